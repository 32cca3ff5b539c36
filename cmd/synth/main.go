package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

type config struct {
	args []string
	out  io.Writer
}

type command interface {
	Name() string
	Help() string
	Run() error
	Register(*flag.FlagSet)
}

func (config *config) run() int {
	cmdName, args := parseArgs(config.args)
	commands := newCommands(config.out)
	if cmdName == "" {
		printUsage(config.out, commands)
		return errorExitCode
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}
		flags := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		flags.SetOutput(config.out)
		cmd.Register(flags)
		if err := flags.Parse(args); err != nil {
			return errorExitCode
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(config.out, "Command failed: %v\n", err)
			return errorExitCode
		}
		return successExitCode
	}

	fmt.Fprintf(config.out, "Unknown command: %s\n\n", cmdName)
	printUsage(config.out, commands)
	return errorExitCode
}

const (
	successExitCode = 0
	errorExitCode   = 1
)

func newCommands(out io.Writer) []command {
	return []command{
		&listCommand{out: out},
		&newCommand{out: out},
		&renderCommand{out: out},
		&playCommand{out: out},
		&inspectCommand{out: out},
	}
}

func main() {
	c := config{
		args: os.Args,
		out:  os.Stdout,
	}
	os.Exit(c.run())
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func printUsage(out io.Writer, commands []command) {
	fmt.Fprintln(out, "Synth renders node graph patches into audio")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: synth <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(out, "\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}
