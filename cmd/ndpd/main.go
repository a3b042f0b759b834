// Command ndpd runs the neighbor discovery engine against a single
// interface and renders its live neighbor table to a terminal.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dkrutsko/ndpd"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

var opt struct {
	Interface string
	Stress    bool
	Refresh   time.Duration
	Verbose   bool
	Help      bool
}

func init() {
	pflag.StringVarP(&opt.Interface, "interface", "i", ndp.DefaultInterface, "network interface to bind")
	pflag.BoolVarP(&opt.Stress, "stress", "s", false, "start in stress mode")
	pflag.DurationVarP(&opt.Refresh, "refresh", "r", time.Second, "table redraw interval")
	pflag.BoolVarP(&opt.Verbose, "verbose", "v", false, "log at debug level")
	pflag.BoolVarP(&opt.Help, "help", "h", false, "show this help text")
}

func main() {
	pflag.Parse()
	if opt.Help {
		fmt.Printf("usage: %s [options]\n\noptions:\n%s", os.Args[0], pflag.CommandLine.FlagUsages())
		os.Exit(0)
	}

	// The operator-facing interface name is limited to 8 characters.
	if len(opt.Interface) > 8 {
		fmt.Fprintf(os.Stderr, "error: interface name %q is longer than 8 characters\n", opt.Interface)
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if opt.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()

	e := ndp.New(opt.Interface, ndp.WithLogger(log))
	e.Create()
	if e.Error() != ndp.ErrNone {
		fmt.Fprintf(os.Stderr, "error: %s\n", e.ErrorString())
		os.Exit(1)
	}
	defer e.Destroy()

	e.Start()
	e.SetStress(opt.Stress)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	cmdCh := make(chan string)
	go readCommands(cmdCh)

	ticker := time.NewTicker(opt.Refresh)
	defer ticker.Stop()

	fmt.Println("type f + Enter to toggle stress mode, Ctrl-C to quit")

	for {
		select {
		case <-sigCh:
			return
		case <-ticker.C:
			render(e)
		case cmd, ok := <-cmdCh:
			if !ok {
				cmdCh = nil
				continue
			}
			if strings.EqualFold(cmd, "f") {
				e.SetStress(!e.Stress())
			}
		}
	}
}

// readCommands feeds single-character operator commands from stdin to
// ch, mirroring the original curses menu's 'f' stress-toggle keypress
// without a curses dependency: the operator types a letter and Enter.
func readCommands(ch chan<- string) {
	defer close(ch)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		ch <- strings.TrimSpace(scanner.Text())
	}
}

// render redraws the status line and neighbor table in place.
func render(e *ndp.Engine) {
	fmt.Print("\033[H\033[2J")

	st := e.Status()
	mode := "normal"
	if st.Stress {
		mode = color.YellowString("stress")
	}
	fmt.Printf("interface %s  addr %s  mtu %d  mode %s  neighbors %d\n\n",
		st.Interface, st.Addr, st.MTU, mode, st.Neighbors)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Address", "State", "Age"})

	for _, n := range e.Neighbors() {
		state := color.GreenString("fresh")
		if !n.Arrived {
			state = color.YellowString("aging")
		}
		table.Append([]string{n.Addr.String(), state, fmt.Sprintf("%d", n.Recorded)})
	}

	table.Render()
}
