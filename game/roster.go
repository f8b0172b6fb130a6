package game

import "strings"

// Roster is the process-wide player registry. Iteration order is insertion
// order, which czar rotation and tie-breaking depend on. Access is
// serialized by the owning Game's mutex.
type Roster struct {
	g     *Game
	users map[string]*Player
	order []string
}

func newRoster(g *Game) *Roster {
	return &Roster{g: g, users: make(map[string]*Player)}
}

func (r *Roster) UsernameAvailable(username string) bool {
	for _, p := range r.users {
		if strings.EqualFold(p.Username, username) {
			return false
		}
	}
	return true
}

func (r *Roster) RegisterUser(username string) (*Player, error) {
	if !r.UsernameAvailable(username) {
		return nil, ErrUsernameTaken
	}
	p := newPlayer(r.g, username)
	r.users[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

func (r *Roster) Get(id string) (*Player, bool) {
	p, ok := r.users[id]
	return p, ok
}

func (r *Roster) Remove(id string) {
	p, ok := r.users[id]
	if !ok {
		return
	}
	if p.evict != nil {
		p.evict.Stop()
		p.evict = nil
	}
	r.g.pool.Recycle(p.HandCards())
	p.ClearHand()
	delete(r.users, id)
	for i, uid := range r.order {
		if uid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Roster) AllUsers() []*Player {
	users := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.users[id])
	}
	return users
}

func (r *Roster) ActiveUsers() []*Player {
	users := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		if p := r.users[id]; p.active {
			users = append(users, p)
		}
	}
	return users
}
