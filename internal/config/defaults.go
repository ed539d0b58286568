package config

import "github.com/atikulmunna/logsift/internal/parser"

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		UsernamePattern: `\s\[(?<username>\w+)\]`,
		DatePattern:     `^(?<date>[0-9]{2}/[0-9]{2}/[0-9]{4})\s`,
		MessagePattern:  `\[\w+\]:\s(?<message>.*)$`,
		PatternSyntax:   parser.SyntaxRegexp,
		DateFormat:      "dd/MM/yyyy",
		OutputPath:      "output/output.log",
		LogLevel:        "info",
	}
}
