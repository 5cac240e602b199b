package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// Main runs the read-eval-print loop. Command handlers print their own
// errors; the loop itself only dispatches, which keeps it resilient to any
// single failing command.
func (a *App) Main(ctx context.Context) {
	printlnFn("Loop journal (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("loop> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: today, list <yyyy-mm-dd>, resurface, anniversary, streak, months, capture <prompt...>, edit <id> <text...>, delete <id>, exit")
		case "today":
			a.Today(ctx)
		case "list":
			a.List(ctx, args)
		case "resurface":
			a.Resurface(ctx, false)
		case "anniversary":
			a.Resurface(ctx, true)
		case "streak":
			a.Streak(ctx)
		case "months":
			a.Months(ctx)
		case "capture":
			a.Capture(ctx, args)
		case "edit":
			a.Edit(ctx, args)
		case "delete":
			a.Delete(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
