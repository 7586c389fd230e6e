// Command spacewatch-ctl is the operator-facing CLI standing in for the
// HTTP prediction endpoints spec.md §6 scopes out of the core ("a thin
// read/write surface ... is assumed, not specified here"): it exercises
// internal/prediction directly against the same predictions.json file the
// checker daemon writes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spacewatch/checker/internal/model"
	"github.com/spacewatch/checker/internal/prediction"
	"github.com/spacewatch/checker/internal/statestore"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "predict":
		runPredict(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  spacewatch-ctl predict submit -note "..." [-predictions path]
  spacewatch-ctl predict scorecard [-predictions path]`)
}

func runPredict(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	fs := flag.NewFlagSet("predict "+args[0], flag.ExitOnError)
	predictionsPath := fs.String("predictions", "predictions.json", "path to predictions.json")
	note := fs.String("note", "", "free-text prediction note")

	switch args[0] {
	case "submit":
		fs.Parse(args[1:])
		submit(*predictionsPath, *note)
	case "scorecard":
		fs.Parse(args[1:])
		scorecard(*predictionsPath)
	default:
		usage()
		os.Exit(2)
	}
}

func submit(path, note string) {
	if strings.TrimSpace(note) == "" {
		slog.Error("predict submit: -note is required")
		os.Exit(1)
	}

	state := statestore.LoadJSON(path, model.DefaultPredictionState())
	now := time.Now()

	next, p, err := prediction.Submit(state, note, now)
	if err != nil {
		if cd, ok := err.(*prediction.CooldownError); ok {
			fmt.Fprintf(os.Stderr, "cooldown active until %s\n", cd.CooldownEnds.Format(time.RFC3339))
			os.Exit(1)
		}
		slog.Error("predict submit failed", "err", err)
		os.Exit(1)
	}

	if err := statestore.SaveJSON(path, next); err != nil {
		slog.Error("failed to save predictions", "err", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(p)
}

func scorecard(path string) {
	state := statestore.LoadJSON(path, model.DefaultPredictionState())
	sc := prediction.Score(state, time.Now())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(sc)
}
