package checks

import "github.com/bwmarrin/discordgo"

// Playback is the read-only view of the playback subsystem the checks need.
type Playback interface {
	HasConnection(guildID string) bool
	// QueueLength reports the number of tracks including the current one.
	QueueLength(guildID string) (n int, ok bool)
}

// Gather snapshots the caller's voice state from the session state cache and
// the guild's playback state. Nothing is cached between calls.
func Gather(st *discordgo.State, pb Playback, guildID, userID string) VoiceState {
	v := VoiceState{GuildID: guildID, UserID: userID}

	if st != nil {
		botID := ""
		if st.User != nil {
			botID = st.User.ID
		}
		if g, err := st.Guild(guildID); err == nil && g != nil {
			v.AFKChannelID = g.AfkChannelID
			for _, vs := range g.VoiceStates {
				if vs == nil || vs.ChannelID == "" {
					continue
				}
				switch vs.UserID {
				case userID:
					v.ChannelID = vs.ChannelID
					v.SelfDeaf = vs.SelfDeaf
					v.ServerDeaf = vs.Deaf
				case botID:
					v.BotChannelID = vs.ChannelID
				}
			}
		}
	}

	if pb != nil {
		v.HasConnection = pb.HasConnection(guildID)
		v.QueueLength, v.QueueExists = pb.QueueLength(guildID)
	}
	return v
}
