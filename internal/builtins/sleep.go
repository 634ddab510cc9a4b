// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/termshell/internal/commands"
)

// sleepTick is how often sleep --progress redraws.
const sleepTick = 100 * time.Millisecond

func sleepProcessor() *commands.Processor {
	return sealed(&commands.Processor{
		Command:     "sleep",
		Description: "Wait for a number of seconds",
		Usage:       "sleep <seconds> [--progress]",
		Category:    CategorySystem,
		Parameters: []commands.Parameter{
			{
				Name:        "seconds",
				Type:        commands.ParamNumber,
				Positional:  true,
				Required:    true,
				Description: "Duration in seconds",
				Validator: func(v any) error {
					if secondsOf(v) < 0 {
						return errors.New("must not be negative")
					}
					return nil
				},
			},
			{Name: "progress", Aliases: []string{"p"}, Type: commands.ParamBoolean, Description: "Show a progress bar"},
		},
		Handler: runSleep,
	})
}

func secondsOf(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func runSleep(ctx context.Context, ec *commands.ExecutionContext) error {
	total := time.Duration(ec.Args.Float("seconds", 0) * float64(time.Second))
	showProgress := ec.Args.Bool("progress")
	label := fmt.Sprintf("sleep %s", total)

	deadline := time.NewTimer(total)
	defer deadline.Stop()

	var tick <-chan time.Time
	if showProgress {
		t := time.NewTicker(sleepTick)
		defer t.Stop()
		tick = t.C
		ec.Writer.WriteProgress(label, 0)
	}

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			if showProgress {
				ec.Writer.WriteProgress(label, 1)
			}
			return nil
		case <-tick:
			ec.Writer.WriteProgress(label, min(float64(time.Since(start))/float64(total), 0.99))
		}
	}
}
