package irc

import (
	"sync"

	"twitchchat/internal/app/domain/ident"
)

// session holds what the dispatcher has learned about the current login:
// identity, per-channel state snapshots and moderator sets. It is cleared
// as one atomic reset on every disconnect.
type session struct {
	mu sync.RWMutex

	username string
	loggedIn bool

	globalUserstate map[string]any
	userstate       map[string]map[string]any
	moderators      map[string]map[string]struct{}

	lastJoined string
	channels   []string

	emoteSets string
}

func newSession() *session {
	s := &session{}
	s.resetLocked()
	return s
}

func (s *session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *session) resetLocked() {
	// channels survives a disconnect on purpose: the next login rejoins
	// the union of configured and previously joined channels
	s.loggedIn = false
	s.globalUserstate = make(map[string]any)
	s.userstate = make(map[string]map[string]any)
	s.moderators = make(map[string]map[string]struct{})
	s.lastJoined = ""
}

func (s *session) setUsername(name string) {
	s.mu.Lock()
	s.username = name
	s.mu.Unlock()
}

func (s *session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *session) setLoggedIn(v bool) {
	s.mu.Lock()
	s.loggedIn = v
	s.mu.Unlock()
}

func (s *session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

func (s *session) setGlobalUserstate(tags map[string]any) {
	s.mu.Lock()
	s.globalUserstate = tags
	s.mu.Unlock()
}

func (s *session) setUserstate(channel string, tags map[string]any) {
	s.mu.Lock()
	s.userstate[channel] = tags
	s.mu.Unlock()
}

func (s *session) hasUserstate(channel string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.userstate[channel]
	return ok
}

func (s *session) Userstate(channel string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userstate[channel]
}

func (s *session) dropUserstate(channel string) {
	s.mu.Lock()
	delete(s.userstate, channel)
	s.mu.Unlock()
}

func (s *session) setLastJoined(channel string) {
	s.mu.Lock()
	s.lastJoined = channel
	s.mu.Unlock()
}

func (s *session) LastJoined() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastJoined
}

func (s *session) addChannel(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch == channel {
			return
		}
	}
	s.channels = append(s.channels, channel)
}

func (s *session) removeChannel(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ch := range s.channels {
		if ch == channel {
			s.channels = append(s.channels[:i:i], s.channels[i+1:]...)
			return
		}
	}
}

// Channels returns the ordered set of currently joined channels.
func (s *session) Channels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.channels))
	copy(out, s.channels)
	return out
}

// takeChannels empties the joined set and returns what it held, used when
// the join queue is rebuilt after a login.
func (s *session) takeChannels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.channels
	s.channels = nil
	return out
}

func (s *session) addModerator(channel, username string) {
	username = ident.Username(username)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moderators[channel] == nil {
		s.moderators[channel] = make(map[string]struct{})
	}
	s.moderators[channel][username] = struct{}{}
}

func (s *session) removeModerator(channel, username string) {
	username = ident.Username(username)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.moderators[channel], username)
}

// IsMod is a synchronous lookup, never a network round-trip.
func (s *session) IsMod(channel, username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.moderators[ident.Channel(channel)][ident.Username(username)]
	return ok
}

func (s *session) setEmoteSets(sets string) {
	s.mu.Lock()
	s.emoteSets = sets
	s.mu.Unlock()
}

func (s *session) EmoteSets() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emoteSets
}
