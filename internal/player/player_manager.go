package player

import "sync"

// PlayerManager owns one Player per guild and answers the playback lookups
// the voice checks make.
type PlayerManager struct {
	mu      sync.Mutex
	Players map[string]*Player
}

func NewPlayerManager() *PlayerManager {
	return &PlayerManager{Players: make(map[string]*Player)}
}

func (pm *PlayerManager) Get(guildID string) *Player {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if p, ok := pm.Players[guildID]; ok {
		return p
	}
	p := NewPlayer(guildID)
	pm.Players[guildID] = p
	return p
}

func (pm *PlayerManager) Peek(guildID string) *Player {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.Players[guildID]
}

// Remove drops the guild's player after leaving its channel.
func (pm *PlayerManager) Remove(guildID string) {
	pm.mu.Lock()
	p := pm.Players[guildID]
	delete(pm.Players, guildID)
	pm.mu.Unlock()

	if p != nil {
		p.Leave()
	}
}

func (pm *PlayerManager) HasConnection(guildID string) bool {
	p := pm.Peek(guildID)
	return p != nil && p.ChannelID() != ""
}

func (pm *PlayerManager) QueueLength(guildID string) (int, bool) {
	p := pm.Peek(guildID)
	if p == nil {
		return 0, false
	}
	n := p.QueueLength()
	return n, n > 0
}
