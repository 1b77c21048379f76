// Command irctl is the interactive control-line client for irengined,
// modeled on the teacher's src/kissutil.go / src/appserver.go
// pflag-based command-line tools: a single subcommand per invocation
// talking to the daemon's websocket control surface (internal/
// controlsrv).
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"
)

func main() {
	var (
		addr    = pflag.StringP("addr", "a", "localhost:7890", "irengined control-surface address")
		device  = pflag.StringP("device", "d", "", "Device prefix: tv, ac, stb, spk, fan, cst")
		help    = pflag.Bool("help", false, "Display help text")
		timeout = pflag.DurationP("timeout", "t", 5*time.Second, "Reply wait timeout")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irctl [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  execute <param>                run a trigger action, e.g. Power, Vol+\n")
		fmt.Fprintf(os.Stderr, "  execute-repeat <param> <n>     run an action n times (Vol+/Vol- etc.)\n")
		fmt.Fprintf(os.Stderr, "  learn <action>                 arm learning for an action name\n")
		fmt.Fprintf(os.Stderr, "  set <param> <value>            AC: power/mode/temp/fan/swing/protocol\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help || pflag.NArg() == 0 {
		pflag.Usage()
		if *help {
			return
		}
		os.Exit(1)
	}
	if *device == "" {
		fmt.Fprintln(os.Stderr, "irctl: --device is required")
		os.Exit(1)
	}

	url := "ws://" + *addr + "/" + *device
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irctl: connecting to %s: %v\n", url, err)
		os.Exit(1)
	}
	defer conn.Close()

	args := pflag.Args()
	mutation, err := buildMutation(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irctl: %v\n", err)
		os.Exit(1)
	}

	if err := conn.WriteJSON(mutation); err != nil {
		fmt.Fprintf(os.Stderr, "irctl: sending command: %v\n", err)
		os.Exit(1)
	}

	_ = conn.SetReadDeadline(time.Now().Add(*timeout))
	var ev struct {
		Type    string `json:"type"`
		Message string `json:"message,omitempty"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		fmt.Fprintf(os.Stderr, "irctl: waiting for reply: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s %s\n", ev.Type, ev.Message)
	if ev.Type == "error" {
		os.Exit(1)
	}
}

type mutation struct {
	Param      string          `json:"param"`
	Value      json.RawMessage `json:"value"`
	Repeat     int             `json:"repeat,omitempty"`
	IntervalMS int             `json:"interval_ms,omitempty"`
}

func buildMutation(args []string) (mutation, error) {
	if len(args) < 1 {
		return mutation{}, fmt.Errorf("missing command")
	}
	switch args[0] {
	case "execute":
		if len(args) != 2 {
			return mutation{}, fmt.Errorf("usage: execute <param>")
		}
		return mutation{Param: args[1], Value: []byte("null")}, nil
	case "execute-repeat":
		if len(args) != 3 {
			return mutation{}, fmt.Errorf("usage: execute-repeat <param> <count>")
		}
		count, err := strconv.Atoi(args[2])
		if err != nil {
			return mutation{}, fmt.Errorf("count must be an integer: %w", err)
		}
		return mutation{Param: args[1], Value: []byte("null"), Repeat: count}, nil
	case "learn":
		if len(args) != 2 {
			return mutation{}, fmt.Errorf("usage: learn <action>")
		}
		encoded, _ := json.Marshal(args[1])
		return mutation{Param: "Learn_Mode", Value: encoded}, nil
	case "set":
		if len(args) != 3 {
			return mutation{}, fmt.Errorf("usage: set <param> <value>")
		}
		return mutation{Param: paramName(args[1]), Value: encodeValue(args[2])}, nil
	default:
		return mutation{}, fmt.Errorf("unknown command %q", args[0])
	}
}

// paramName maps irctl's lowercase AC sub-command names onto the
// controller-surface parameter names from §6's device table.
func paramName(name string) string {
	names := map[string]string{
		"power": "Power", "mode": "Mode", "temp": "Temperature",
		"fan": "Fan_Speed", "swing": "Swing", "protocol": "Learn_Protocol",
	}
	if p, ok := names[name]; ok {
		return p
	}
	return name
}

func encodeValue(raw string) json.RawMessage {
	switch raw {
	case "true", "on":
		return []byte("true")
	case "false", "off":
		return []byte("false")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return []byte(strconv.Itoa(n))
	}
	encoded, _ := json.Marshal(raw)
	return encoded
}
