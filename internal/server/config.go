package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"hulla/internal/hand"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Rooms  RoomSettings   `hcl:"rooms,block"`
	Rules  *RulesConfig   `hcl:"rules,block"`
	Auth   *AuthConfig    `hcl:"auth,block"`
}

// AuthConfig enables external token validation for connecting players.
// Without this block every connection is accepted as-is.
type AuthConfig struct {
	URL         string `hcl:"url"`
	AdminSecret string `hcl:"admin_secret,optional"`
	// FailOpen admits players when the auth service is unreachable.
	FailOpen bool `hcl:"fail_open,optional"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address         string `hcl:"address,optional"`
	Port            int    `hcl:"port,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	LogFile         string `hcl:"log_file,optional"`
	DatabasePath    string `hcl:"database_path,optional"`
	IdleRoomMinutes int    `hcl:"idle_room_minutes,optional"`
}

// RoomSettings contains defaults applied to newly created rooms
type RoomSettings struct {
	MaxRounds  int `hcl:"max_rounds,optional"`
	MaxPlayers int `hcl:"max_players,optional"`
}

// RulesConfig overrides individual scoring knobs. Absent fields keep
// their standard values.
type RulesConfig struct {
	HighSumThreshold *int `hcl:"high_sum_threshold,optional"`
	LowSumThreshold  *int `hcl:"low_sum_threshold,optional"`
	LowFourTwoScore  *int `hcl:"low_four_two_score,optional"`
	LowSumScore      *int `hcl:"low_sum_score,optional"`
	FourTwoScore     *int `hcl:"four_two_score,optional"`
	ClaimPenalty     *int `hcl:"claim_penalty,optional"`
	StopPenalty      *int `hcl:"stop_penalty,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:         "localhost",
			Port:            8080,
			LogLevel:        "info",
			LogFile:         "hulla-server.log",
			DatabasePath:    "hulla.db",
			IdleRoomMinutes: 30,
		},
		Rooms: RoomSettings{
			MaxRounds:  5,
			MaxPlayers: 7,
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A
// missing file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultServerConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = defaults.Server.LogFile
	}
	if config.Server.DatabasePath == "" {
		config.Server.DatabasePath = defaults.Server.DatabasePath
	}
	if config.Server.IdleRoomMinutes == 0 {
		config.Server.IdleRoomMinutes = defaults.Server.IdleRoomMinutes
	}
	if config.Rooms.MaxRounds == 0 {
		config.Rooms.MaxRounds = defaults.Rooms.MaxRounds
	}
	if config.Rooms.MaxPlayers == 0 {
		config.Rooms.MaxPlayers = defaults.Rooms.MaxPlayers
	}
	if config.Rooms.MaxPlayers > 7 {
		return nil, fmt.Errorf("max_players %d exceeds the 7-seat limit", config.Rooms.MaxPlayers)
	}

	return &config, nil
}

// ListenAddr returns the host:port the server binds to.
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameRules resolves the effective scoring rules from the config.
func (c *ServerConfig) GameRules() hand.Rules {
	rules := hand.DefaultRules()
	if c.Rules == nil {
		return rules
	}
	if v := c.Rules.HighSumThreshold; v != nil {
		rules.HighSumThreshold = *v
	}
	if v := c.Rules.LowSumThreshold; v != nil {
		rules.LowSumThreshold = *v
	}
	if v := c.Rules.LowFourTwoScore; v != nil {
		rules.LowFourTwoScore = *v
	}
	if v := c.Rules.LowSumScore; v != nil {
		rules.LowSumScore = *v
	}
	if v := c.Rules.FourTwoScore; v != nil {
		rules.FourTwoScore = *v
	}
	if v := c.Rules.ClaimPenalty; v != nil {
		rules.ClaimPenalty = *v
	}
	if v := c.Rules.StopPenalty; v != nil {
		rules.StopPenalty = *v
	}
	return rules
}
