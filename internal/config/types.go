package config

type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN,required"`
	DataDir               string   `env:"DATA_DIR" envDefault:"./data"`
	Owners                []string `env:"OWNERS" envSeparator:","`
	RegisterCommandsOnBot bool     `env:"REGISTER_COMMANDS_ON_BOT" envDefault:"false"`
	LogLevel              string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat             string   `env:"LOG_FORMAT" envDefault:"text"` // text/json
	CommandRate           float64  `env:"COMMAND_RATE" envDefault:"1"`  // per user per second, 0 disables
	CommandBurst          int      `env:"COMMAND_BURST" envDefault:"5"`

	Embed  EmbedConfig `envPrefix:"EMBED_"`
	Emojis EmojiConfig `envPrefix:"EMOJI_"`
}

type EmbedConfig struct {
	HexColor     string `env:"COLOR" envDefault:"7289da"`
	ShowAuthor   bool   `env:"SHOW_AUTHOR" envDefault:"true"`
	SetTimestamp bool   `env:"TIMESTAMP" envDefault:"true"`
}

type EmojiConfig struct {
	CrossMark string `env:"CROSS" envDefault:"❌"`
	CheckMark string `env:"CHECK" envDefault:"✅"`
	Art       string `env:"ART" envDefault:"🎨"`
	Music     string `env:"MUSIC" envDefault:"🎶"`
}
