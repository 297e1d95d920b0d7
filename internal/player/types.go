package player

import "time"

type Track struct {
	Query       string
	Title       string
	RequestedBy string
	AddedInChan string
	AddedAt     time.Time
}

type PlayerStatus int

const (
	StatusPlaying PlayerStatus = iota
	StatusPaused
	StatusIdle
)

func (s PlayerStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}
