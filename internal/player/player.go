package player

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sonroyaalmerol/aurorabot/internal/utils"
)

var (
	ErrNothingPlaying = errors.New("nothing is playing")
	ErrNoNextTrack    = errors.New("no song to skip to")
)

// Player tracks the voice channel and track queue of one guild. SongQueue[Qpos]
// is the current track; everything after it is up next.
type Player struct {
	guildID string

	mu        sync.Mutex
	channelID string
	Status    PlayerStatus
	SongQueue []Track
	Qpos      int
	LoopSong  bool
	LoopQueue bool
}

func NewPlayer(guildID string) *Player {
	return &Player{guildID: guildID, Status: StatusIdle}
}

// Join records the voice channel the player is bound to.
func (p *Player) Join(channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channelID == channelID {
		return
	}
	slog.Debug("player joined channel", "guildID", p.guildID, "channelID", channelID, "previous", p.channelID)
	p.channelID = channelID
}

// Leave drops the channel binding and resets playback.
func (p *Player) Leave() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channelID = ""
	p.resetLocked()
}

func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

func (p *Player) Add(track Track, immediate bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if track.AddedAt.IsZero() {
		track.AddedAt = time.Now()
	}
	if p.currentLocked() == nil {
		p.SongQueue = append(p.SongQueue[:0], track)
		p.Qpos = 0
		p.Status = StatusPlaying
		return
	}
	if !immediate {
		p.SongQueue = append(p.SongQueue, track)
		return
	}

	insertAt := p.Qpos + 1
	p.SongQueue = append(p.SongQueue, Track{})             // grow by one
	copy(p.SongQueue[insertAt+1:], p.SongQueue[insertAt:]) // shift right
	p.SongQueue[insertAt] = track
}

func (p *Player) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	var newq []Track
	if cur := p.currentLocked(); cur != nil {
		newq = append(newq, *cur)
	}
	p.SongQueue = newq
	p.Qpos = 0
}

// Stop empties the queue but keeps the channel binding.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Player) resetLocked() {
	p.SongQueue = nil
	p.Qpos = 0
	p.Status = StatusIdle
	p.LoopSong = false
	p.LoopQueue = false
}

func (p *Player) currentLocked() *Track {
	if p.Qpos >= 0 && p.Qpos < len(p.SongQueue) {
		return &p.SongQueue[p.Qpos]
	}
	return nil
}

func (p *Player) GetCurrent() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur := p.currentLocked()
	if cur == nil {
		return nil
	}
	cp := *cur
	return &cp
}

// Skip advances to the next track, wrapping around when the queue loops.
func (p *Player) Skip() (*Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentLocked() == nil {
		return nil, ErrNothingPlaying
	}
	next := p.Qpos + 1
	if next >= len(p.SongQueue) {
		if !p.LoopQueue {
			return nil, ErrNoNextTrack
		}
		next = 0
	}
	p.Qpos = next
	p.LoopSong = false
	p.Status = StatusPlaying
	cp := p.SongQueue[p.Qpos]
	return &cp, nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Status != StatusPlaying {
		return errors.New("not currently playing")
	}
	p.Status = StatusPaused
	return nil
}

func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Status == StatusPlaying {
		return errors.New("already playing")
	}
	if p.currentLocked() == nil {
		return errors.New("nothing to play")
	}
	p.Status = StatusPlaying
	return nil
}

func (p *Player) GetStatus() PlayerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Status
}

// QueueLength counts the current track and everything playable after it.
// A looping queue wraps around, so every track is still ahead.
func (p *Player) QueueLength() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Qpos >= len(p.SongQueue) {
		return 0
	}
	if p.LoopQueue {
		return len(p.SongQueue)
	}
	return len(p.SongQueue) - p.Qpos
}

// QueueSize counts the tracks after the current one.
func (p *Player) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.SongQueue)-p.Qpos-1 < 0 {
		return 0
	}
	return len(p.SongQueue) - p.Qpos - 1
}

func (p *Player) GetQueuePage(page, pageSize int) ([]Track, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Qpos+1 >= len(p.SongQueue) {
		return []Track{}, 0
	}

	visible := p.SongQueue[p.Qpos+1:]
	total := len(visible)

	start := (page - 1) * pageSize
	if start >= total {
		return []Track{}, total
	}
	end := min(start+pageSize, total)

	out := make([]Track, end-start)
	copy(out, visible[start:end])
	return out, total
}

func (p *Player) ToggleLoopSong() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentLocked() == nil {
		return p.LoopSong, errors.New("no song to loop")
	}
	p.LoopQueue = false
	p.LoopSong = !p.LoopSong
	return p.LoopSong, nil
}

func (p *Player) ToggleLoopQueue() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentLocked() == nil {
		return p.LoopQueue, errors.New("no songs to loop")
	}
	if len(p.SongQueue) < 2 {
		return p.LoopQueue, errors.New("not enough songs to loop a queue")
	}
	p.LoopSong = false
	p.LoopQueue = !p.LoopQueue
	return p.LoopQueue, nil
}

// Shuffle reorders the tracks after the current one.
func (p *Player) Shuffle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Qpos+1 >= len(p.SongQueue) {
		return 0
	}
	upcoming := p.SongQueue[p.Qpos+1:]
	utils.ShuffleSlice(upcoming)
	return len(upcoming)
}

// Move moves an item in the queue (1-based positions for the queue after current song)
func (p *Player) Move(from int, to int) (Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if from < 1 || to < 1 {
		return Track{}, errors.New("position must be at least 1")
	}
	start := p.Qpos + 1
	if start >= len(p.SongQueue) {
		return Track{}, errors.New("no items to move")
	}
	srcIdx := start + (from - 1)
	dstIdx := start + (to - 1)
	if srcIdx >= len(p.SongQueue) || dstIdx >= len(p.SongQueue) {
		return Track{}, errors.New("move index is outside the range of the queue")
	}
	item := p.SongQueue[srcIdx]
	p.SongQueue = append(p.SongQueue[:srcIdx], p.SongQueue[srcIdx+1:]...)
	p.SongQueue = append(p.SongQueue[:dstIdx], append([]Track{item}, p.SongQueue[dstIdx:]...)...)
	return item, nil
}

func (p *Player) RemoveFromQueue(pos int, count int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 1 {
		return errors.New("position must be at least 1")
	}
	if count < 1 {
		return errors.New("range must be at least 1")
	}
	start := p.Qpos + 1
	if start >= len(p.SongQueue) {
		return errors.New("queue is empty")
	}
	begin := start + (pos - 1)
	if begin >= len(p.SongQueue) {
		return errors.New("position out of range")
	}
	end := min(begin+count, len(p.SongQueue))
	p.SongQueue = append(p.SongQueue[:begin], p.SongQueue[end:]...)
	return nil
}

func (p *Player) Looping() (song, queue bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.LoopSong, p.LoopQueue
}
