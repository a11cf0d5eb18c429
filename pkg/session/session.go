/*
 * Copyright 2026 The Margin Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package session exposes the collaboration session to the rest of the
// engine: observed connection state, local identity, and the presence of
// remote collaborators with their display colors.
package session

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/margin-team/margin/pkg/errors"
)

// Status represents the observed state of the replication transport.
// Reconnect attempts belong to the external sync provider; the session only
// reports the transitions it observes.
type Status string

const (
	// Connecting is the initial state before the first observed transition.
	Connecting Status = "connecting"

	// Connected means the sync provider reports a live connection.
	Connected Status = "connected"

	// Disconnected means the sync provider reports a dropped connection.
	Disconnected Status = "disconnected"
)

// PlaceholderName is rendered for collaborators whose display name is
// missing or whitespace-only. Presence entries are never hidden, only
// visually degraded.
const PlaceholderName = "?"

// User is one presence entry: a display name and a tag color.
type User struct {
	Name  string
	Color string
}

type peer struct {
	id    string
	name  string
	color string
}

// Option configures how we set up the session.
type Option struct {
	// Key identifies this client instance. A random key is generated when
	// none is given.
	Key string

	// Rand supplies the color hue source, uniform over [0, 1). Defaults to
	// math/rand; tests inject a fixed source.
	Rand func() float64
}

// Session is the collaboration session facade for one open document.
type Session struct {
	key    string
	status Status
	randFn func() float64

	localName  string
	localColor string

	peers []*peer
}

// NewSession creates a Session in the connecting state.
func NewSession(opts ...Option) *Session {
	key := ""
	randFn := rand.Float64
	if len(opts) > 0 {
		if opts[0].Key != "" {
			key = opts[0].Key
		}
		if opts[0].Rand != nil {
			randFn = opts[0].Rand
		}
	}
	if key == "" {
		key = uuid.New().String()
	}

	return &Session{
		key:    key,
		status: Connecting,
		randFn: randFn,
	}
}

// Key returns the client key of this session.
func (s *Session) Key() string {
	return s.key
}

// Status returns the last observed connection state.
func (s *Session) Status() Status {
	return s.status
}

// HandleStatus records a connection state transition observed from the
// sync provider.
func (s *Session) HandleStatus(status Status) {
	s.status = status
}

// SetLocalName establishes the local display name. Until a non-blank name
// exists, the local user is not published into presence. The tag color is
// assigned once, on first establishment, and kept for the whole session.
func (s *Session) SetLocalName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.InvalidArgument("display name must not be empty or whitespace-only")
	}

	s.localName = name
	if s.localColor == "" {
		s.localColor = pastelColor(s.randFn())
	}
	return nil
}

// Published returns whether the local user appears in presence yet.
func (s *Session) Published() bool {
	return s.localName != ""
}

// LocalUser returns the local presence entry. The second return value is
// false until a display name has been established.
func (s *Session) LocalUser() (User, bool) {
	if !s.Published() {
		return User{}, false
	}
	return User{Name: s.localName, Color: s.localColor}, true
}

// PeerJoined records a remote collaborator observed in awareness. Joining
// again under the same ID updates the entry in place, keeping its order.
func (s *Session) PeerJoined(id, name, color string) {
	for _, p := range s.peers {
		if p.id == id {
			p.name = name
			p.color = color
			return
		}
	}
	s.peers = append(s.peers, &peer{id: id, name: name, color: color})
}

// PeerLeft removes a remote collaborator from presence.
func (s *Session) PeerLeft(id string) {
	for i, p := range s.peers {
		if p.id == id {
			s.peers = append(s.peers[:i], s.peers[i+1:]...)
			return
		}
	}
}

// Presence returns the ordered presence list: every currently-joined remote
// collaborator, then self once published. Collaborators without a usable
// name render the placeholder identity rather than being dropped.
func (s *Session) Presence() []User {
	var users []User
	for _, p := range s.peers {
		users = append(users, User{
			Name:  displayName(p.name),
			Color: p.color,
		})
	}
	if local, ok := s.LocalUser(); ok {
		users = append(users, local)
	}
	return users
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return PlaceholderName
	}
	return name
}

// pastelColor generates a tag color with a uniformly random hue and fixed
// saturation and lightness, keeping every tag in one pastel family.
func pastelColor(random float64) string {
	return fmt.Sprintf("hsl(%d, 70%%, 85%%)", int(math.Floor(random*360)))
}
