// Package cmd defines the compatctl command tree.
package cmd

// LogFlags configures logging for all commands.
type LogFlags struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"COMPATCTL_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of the console" env:"COMPATCTL_LOG_FILE"`
	RawFile string `help:"Write raw report hex dumps to this file" env:"COMPATCTL_LOG_RAW_FILE"`
}

// CLI is the root command structure parsed by kong.
type CLI struct {
	Log    LogFlags `embed:"" prefix:"log."`
	Config string   `help:"Path to a config file" type:"path"`

	Run       Run           `cmd:"" default:"withargs" help:"Translate Legion Go input into a virtual DualShock 4 controller"`
	Devices   Devices       `cmd:"" help:"List visible HID devices"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}
