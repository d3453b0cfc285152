package command

import (
	"context"
	"flag"
	"io"
)

// Command is a subcommand of the goapjobs tool.
type Command interface {
	Name() string
	// Description is a one line summary shown by help.
	Description() string
	Usage() string

	// SetupFlags registers the command's flags. It is called on a fresh
	// FlagSet before every parse, including by help.
	SetupFlags(fs *flag.FlagSet)

	// Execute runs the command with the arguments left after flag parsing.
	Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

// BaseCommand provides the descriptive half of Command.
type BaseCommand struct {
	name        string
	description string
	usage       string
}

func NewBaseCommand(name, description, usage string) *BaseCommand {
	return &BaseCommand{
		name:        name,
		description: description,
		usage:       usage,
	}
}

func (c *BaseCommand) Name() string { return c.name }
func (c *BaseCommand) Description() string { return c.description }
func (c *BaseCommand) Usage() string { return c.usage }

// SetupFlags registers nothing.
func (c *BaseCommand) SetupFlags(fs *flag.FlagSet) {}
