package signal

import (
	"errors"
	"sync"

	"github.com/peerline/peerline/internal/domain"
)

var ErrRoomFull = errors.New("room full")

// member is one joined peer: its identity plus its outbound queue.
type member struct {
	id   domain.PeerID
	conn *Conn
}

// room holds the peers being paired for one negotiation. capacity is
// fixed at creation.
type room struct {
	name domain.RoomName
	cap  int

	mu      sync.RWMutex
	members map[domain.PeerID]*member
}

func newRoom(name domain.RoomName, capacity int) *room {
	return &room{
		name:    name,
		cap:     capacity,
		members: make(map[domain.PeerID]*member),
	}
}

func (r *room) add(m *member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) >= r.cap {
		return ErrRoomFull
	}
	r.members[m.id] = m
	return nil
}

func (r *room) remove(id domain.PeerID) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; ok {
		delete(r.members, id)
		removed = true
	}
	return removed, len(r.members) == 0
}

// peers snapshots everyone except the given id.
func (r *room) peers(except domain.PeerID) []*member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*member, 0, len(r.members))
	for id, m := range r.members {
		if id == except {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// roomSet indexes live rooms by name. Membership changes go through the
// set lock so a join cannot land in a room that just emptied out and got
// dropped.
type roomSet struct {
	mu    sync.Mutex
	rooms map[domain.RoomName]*room
	cap   int
}

func newRoomSet(capacity int) *roomSet {
	return &roomSet{
		rooms: make(map[domain.RoomName]*room),
		cap:   capacity,
	}
}

func (s *roomSet) join(name domain.RoomName, m *member) (*room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[name]
	if !ok {
		r = newRoom(name, s.cap)
		s.rooms[name] = r
	}
	if err := r.add(m); err != nil {
		return nil, err
	}
	return r, nil
}

// leave removes the peer and retires the room once empty. It reports
// whether the peer was still a member.
func (s *roomSet) leave(r *room, id domain.PeerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, empty := r.remove(id)
	if empty && s.rooms[r.name] == r {
		delete(s.rooms, r.name)
	}
	return removed
}

func (s *roomSet) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
