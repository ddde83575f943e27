package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/cockroachdb/errors"

	"github.com/osa030/touchdeck/internal/infra/script"
)

func replCompleter() *readline.PrefixCompleter {
	onOff := []readline.PrefixCompleterInterface{readline.PcItem("on"), readline.PcItem("off")}
	return readline.NewPrefixCompleter(
		readline.PcItem("play"),
		readline.PcItem("pause"),
		readline.PcItem("resume"),
		readline.PcItem("stop"),
		readline.PcItem("next"),
		readline.PcItem("prev"),
		readline.PcItem("seek"),
		readline.PcItem("autoplay", onOff...),
		readline.PcItem("continue", onOff...),
		readline.PcItem("load"),
		readline.PcItem("nav",
			readline.PcItem("player"),
			readline.PcItem("file_manager"),
			readline.PcItem("wifi_config"),
		),
		readline.PcItem("swipe",
			readline.PcItem("left"),
			readline.PcItem("right"),
			readline.PcItem("up"),
			readline.PcItem("down"),
		),
		readline.PcItem("click",
			readline.PcItem("prev"),
			readline.PcItem("play"),
			readline.PcItem("pause"),
			readline.PcItem("stop"),
			readline.PcItem("next"),
			readline.PcItem("autoplay"),
			readline.PcItem("continue"),
			readline.PcItem("progress_bar"),
		),
		readline.PcItem("press"),
		readline.PcItem("move"),
		readline.PcItem("release"),
		readline.PcItem("drag"),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// runREPL reads commands until EOF, interrupt, quit or ctx is done.
func runREPL(ctx context.Context, d *deck) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "touchdeck> ",
		AutoComplete: replCompleter(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to start prompt")
	}
	defer rl.Close()

	// unblock Readline on shutdown
	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	fmt.Println("Type 'help' for commands.")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to read command")
		}

		switch strings.TrimSpace(line) {
		case "help":
			fmt.Println(script.Usage)
			fmt.Println("status | quit")
			continue
		case "status":
			fmt.Println(d.status())
			continue
		case "quit", "exit":
			return nil
		}

		if err := d.post(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
