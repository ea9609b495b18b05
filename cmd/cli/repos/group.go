package repos

import "github.com/spf13/cobra"

// commandBuilder constructs one cobra command.
type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// CommandGroupBuilder assembles the repository commands that share one set of dependencies.
type CommandGroupBuilder struct {
	Dependencies Dependencies
}

// Build constructs every repository command in help order.
func (builder *CommandGroupBuilder) Build() ([]*cobra.Command, error) {
	builders := []commandBuilder{
		&StatusCommandBuilder{Dependencies: builder.Dependencies},
		&RegisterCommandBuilder{Dependencies: builder.Dependencies},
		&UnregisterCommandBuilder{Dependencies: builder.Dependencies},
		NewFetchCommandBuilder(builder.Dependencies),
		NewPullCommandBuilder(builder.Dependencies),
		&GitCommandBuilder{Dependencies: builder.Dependencies},
		&ExecCommandBuilder{Dependencies: builder.Dependencies},
		&ContextCommandBuilder{Dependencies: builder.Dependencies},
	}

	commands := make([]*cobra.Command, 0, len(builders))
	for _, commandBuilder := range builders {
		command, buildError := commandBuilder.Build()
		if buildError != nil {
			return nil, buildError
		}
		commands = append(commands, command)
	}
	return commands, nil
}
