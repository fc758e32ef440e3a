package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	MaxRooms          int           `mapstructure:"max_rooms" yaml:"max_rooms"`
	MaxRoomMembers    int           `mapstructure:"max_room_members" yaml:"max_room_members"`
	EventBuffer       int           `mapstructure:"event_buffer" yaml:"event_buffer"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		MaxRooms:          4,
		MaxRoomMembers:    8,
		EventBuffer:       16,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.MaxRooms != 0 {
		c.MaxRooms = other.MaxRooms
	}
	if other.MaxRoomMembers != 0 {
		c.MaxRoomMembers = other.MaxRoomMembers
	}
	if other.EventBuffer != 0 {
		c.EventBuffer = other.EventBuffer
	}
}
