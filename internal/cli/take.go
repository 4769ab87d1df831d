package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"exam-simulator/internal/app"
	"exam-simulator/internal/config"
	"exam-simulator/internal/domain"
	"exam-simulator/internal/infra/memory"
	"github.com/spf13/cobra"
)

type takeOptions struct {
	name      string
	testID    domain.TestID
	bankFile  string
	exam      app.ExamConfig
	newTicker app.TickerFunc
}

// NewTakeCmd runs one test in the terminal.
func NewTakeCmd(configPath *string) *cobra.Command {
	var (
		name     string
		testID   string
		bankFile string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take a test in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			opts := takeOptions{
				name:     name,
				testID:   domain.TestID(testID),
				bankFile: bankFile,
				exam:     examConfig(cfg),
			}
			if opts.bankFile == "" {
				opts.bankFile = cfg.Bank.File
			}
			if duration > 0 {
				opts.exam.Duration = duration
			}
			return runTake(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "your name")
	cmd.Flags().StringVar(&testID, "test", string(domain.PreTest), "test to take (pre-test, day-1, ..., post-test)")
	cmd.Flags().StringVar(&bankFile, "bank", "", "YAML question bank (default: embedded bank)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "override the countdown")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runTake(ctx context.Context, in io.Reader, out io.Writer, opts takeOptions) error {
	tests, err := loadBank(opts.bankFile)
	if err != nil {
		return err
	}
	cfg := opts.exam
	if opts.newTicker != nil {
		cfg.NewTicker = opts.newTicker
	}
	service := app.NewExamService(
		memory.NewQuestionBank(memory.NewStaticLoader(tests), 0),
		memory.NewSessionStore(),
		memory.NewResultStore(),
		cfg,
	)

	user, err := service.Login(ctx, opts.name)
	if err != nil {
		return err
	}
	session, err := service.StartTest(ctx, user.ID, opts.testID)
	if err != nil {
		return err
	}
	defer service.Abandon(ctx, user.ID, session.ID())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-session.Done():
				return
			}
		}
	}()

	// read blocks for the next input line; ok is false on EOF or session end.
	read := func() (string, bool) {
		select {
		case line, open := <-lines:
			return line, open
		case <-session.Done():
			return "", false
		}
	}

	snap := session.Snapshot()
	fmt.Fprintf(out, "%s, welcome to %s (%d questions, %s)\n", user.Name, snap.Title, snap.Total, domain.FormatClock(snap.Remaining))

	for snap.State == app.StateActive.String() {
		if !snap.FeedbackVisible {
			printQuestion(out, snap)
			line, ok := read()
			if !ok {
				break
			}
			if line == "q" {
				fmt.Fprintln(out, "Test abandoned.")
				return service.Abandon(ctx, user.ID, session.ID())
			}
			index, err := strconv.Atoi(line)
			if err != nil || index < 1 || index > len(snap.Options) {
				fmt.Fprintf(out, "Enter a number between 1 and %d, or q to quit.\n", len(snap.Options))
				continue
			}
			if snap, err = service.SelectAnswer(ctx, user.ID, session.ID(), index-1); err != nil {
				return err
			}
			printFeedback(out, snap)
			continue
		}

		if snap.IsLast {
			fmt.Fprint(out, "Press Enter to finish. ")
		} else {
			fmt.Fprint(out, "Press Enter for the next question. ")
		}
		if _, ok := read(); !ok {
			break
		}
		fmt.Fprintln(out)
		if snap, err = service.Advance(ctx, user.ID, session.ID()); err != nil {
			return err
		}
	}

	result, err := service.Result(ctx, user.ID, opts.testID)
	if errors.Is(err, domain.ErrResultNotFound) {
		fmt.Fprintln(out, "\nInput closed, test abandoned.")
		return nil
	}
	if err != nil {
		return err
	}
	if result.Reason == domain.ReasonTimeout {
		fmt.Fprintln(out, "\nTime is up!")
	}
	printResult(out, result)
	return nil
}

func printQuestion(out io.Writer, snap app.Snapshot) {
	fmt.Fprintf(out, "\nQuestion %d of %d (%s left)\n%s\n", snap.Position+1, snap.Total, domain.FormatClock(snap.Remaining), snap.Prompt)
	for i, opt := range snap.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprint(out, "> ")
}

func printFeedback(out io.Writer, snap app.Snapshot) {
	if snap.Correct == nil || snap.CorrectIndex == nil {
		return
	}
	if *snap.Correct {
		fmt.Fprintln(out, "Correct!")
		return
	}
	fmt.Fprintf(out, "Incorrect. The correct answer is %d) %s\n", *snap.CorrectIndex+1, snap.Options[*snap.CorrectIndex])
}

func printResult(out io.Writer, r domain.Result) {
	status := "Failed"
	if r.Passed {
		status = "Passed"
	}
	fmt.Fprintf(out, "Result: %d/%d (%d%%) %s, %s\n", r.Score, r.TotalQuestions, r.Percentage, domain.Grade(r.Percentage), status)
	fmt.Fprintf(out, "Time spent: %s\n", domain.FormatClock(r.TimeSpent))
}
