package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/export"
	"trivia-quiz/internal/state"
)

// NewPlayCmd runs one quiz in the terminal.
func NewPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz in the terminal",
		RunE:  runPlayCmd,
	}
	f := cmd.Flags()
	f.IntP("amount", "n", 0, "number of questions (default from config)")
	f.Int("category", 0, "bank category id (0 = any)")
	f.StringP("difficulty", "d", "", "difficulty (easy, medium, hard)")
	f.IntP("seconds", "s", 0, "seconds per question (default from config)")
	f.String("csv", "", "write the answer review to this CSV file")
	f.String("theme", "", "set the color theme (dark, light, toggle)")
	return cmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, v, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	theme, err := resolveTheme(ctx, state.NewThemeStore(store), v.GetString("theme"))
	if err != nil {
		return err
	}

	params := quizDefaults(cfg)
	if n := v.GetInt("amount"); n > 0 {
		params.Amount = n
	}
	if c := v.GetInt("category"); c > 0 {
		params.Category = c
	}
	if d := v.GetString("difficulty"); d != "" {
		params.Difficulty = domain.Difficulty(d)
	}
	if s := v.GetInt("seconds"); s > 0 {
		params.PerQuestionSeconds = s
	}

	report, err := playQuiz(ctx, newQuizService(cfg, store), params, cmd.InOrStdin(), cmd.OutOrStdout(), paletteFor(theme))
	if err != nil {
		return err
	}

	if path := v.GetString("csv"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, report.Answers); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", path)
	}
	return nil
}

func resolveTheme(ctx context.Context, themes *state.ThemeStore, flag string) (state.Theme, error) {
	switch flag {
	case "":
		return themes.Get(ctx, state.ThemeDark), nil
	case "toggle":
		return themes.Toggle(ctx)
	default:
		theme := state.Theme(flag)
		if err := themes.Set(ctx, theme); err != nil {
			return "", err
		}
		return theme, nil
	}
}

type palette struct {
	accent, good, bad, reset string
}

func paletteFor(theme state.Theme) palette {
	if theme == state.ThemeLight {
		return palette{accent: "\033[34m", good: "\033[32m", bad: "\033[31m", reset: "\033[0m"}
	}
	return palette{accent: "\033[96m", good: "\033[92m", bad: "\033[91m", reset: "\033[0m"}
}

// playQuiz drives one quiz from line input: a digit picks an option, an empty
// line submits no answer, and once the question is locked any line advances.
func playQuiz(ctx context.Context, service *app.QuizService, params domain.QuizParameters, in io.Reader, out io.Writer, p palette) (domain.Report, error) {
	ctx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()

	machine := service.Machine()
	defer machine.Reset()

	updates, cancel := machine.Subscribe()
	defer cancel()

	fmt.Fprintln(out, "Loading questions...")
	if notice := service.Begin(ctx, params); notice != nil {
		fmt.Fprintf(out, "%sFailed to fetch questions (%v). Playing the built-in set instead.%s\n", p.bad, notice, p.reset)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	r := &renderer{out: out, p: p, lastIndex: -1}
	r.render(machine.Snapshot())

	for {
		if snap := machine.Snapshot(); snap.Phase == app.PhaseCompleted {
			r.render(snap)
			report, _ := service.Report()
			return report, nil
		}
		select {
		case <-ctx.Done():
			return domain.Report{}, ctx.Err()
		case snap := <-updates:
			r.render(snap)
		case line, ok := <-lines:
			if !ok {
				return domain.Report{}, fmt.Errorf("input closed before the quiz finished")
			}
			snap := machine.Snapshot()
			if snap.Locked {
				machine.Advance()
			} else if snap.Question != nil {
				choice, valid := parseChoice(line, snap.Question.Options)
				if !valid {
					fmt.Fprintf(out, "Enter 1-%d, or leave empty to skip.\n", len(snap.Question.Options))
					continue
				}
				machine.SubmitAnswer(choice)
			}
			r.render(machine.Snapshot())
		}
	}
}

func parseChoice(line string, options []string) (*string, bool) {
	if line == "" {
		return nil, true
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(options) {
		return nil, false
	}
	return domain.Choice(options[n-1]), true
}

// renderer prints only the transitions a terminal player needs to see.
type renderer struct {
	out           io.Writer
	p             palette
	lastIndex     int
	lastLocked    bool
	lastRemaining int
	done          bool
}

func (r *renderer) render(s app.Snapshot) {
	switch s.Phase {
	case app.PhaseActive:
		if s.CurrentIndex != r.lastIndex {
			r.lastIndex, r.lastLocked, r.lastRemaining = s.CurrentIndex, false, s.TimeRemaining
			fmt.Fprintf(r.out, "\n%sQuestion %d/%d%s (%ds)\n%s\n", r.p.accent, s.CurrentIndex+1, s.Total, r.p.reset, s.TimeRemaining, s.Question.QuestionText)
			for i, opt := range s.Question.Options {
				fmt.Fprintf(r.out, "  %d) %s\n", i+1, opt)
			}
			return
		}
		if s.Locked && !r.lastLocked && s.LastAnswer != nil {
			r.lastLocked = true
			a := s.LastAnswer
			switch {
			case a.IsCorrect:
				fmt.Fprintf(r.out, "%sCorrect!%s\n", r.p.good, r.p.reset)
			case a.UserAnswer == nil:
				fmt.Fprintf(r.out, "%sNo answer.%s The answer was %s\n", r.p.bad, r.p.reset, a.CorrectAnswer)
			default:
				fmt.Fprintf(r.out, "%sWrong.%s The answer was %s\n", r.p.bad, r.p.reset, a.CorrectAnswer)
			}
			fmt.Fprintln(r.out, "Press Enter for the next question.")
			return
		}
		if !s.Locked && s.TimeRemaining != r.lastRemaining {
			r.lastRemaining = s.TimeRemaining
			if s.TimeRemaining <= 5 {
				fmt.Fprintf(r.out, "%ds left\n", s.TimeRemaining)
			}
		}
	case app.PhaseCompleted:
		if r.done || s.Summary == nil {
			return
		}
		r.done = true
		fmt.Fprintf(r.out, "\n%sQuiz complete: %d/%d (%d%%)%s\n", r.p.accent, s.Summary.Score, s.Summary.Total, s.Summary.Percent, r.p.reset)
	}
}
