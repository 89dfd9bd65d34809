package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/interview"
	"github.com/mockview/mockview/internal/logger"
	"github.com/mockview/mockview/internal/tools"
)

const (
	PromptAnswer        = "Answer"
	PromptShowHints     = "Show hints"
	PromptRevealExample = "Reveal example answer"
	PromptEndInterview  = "End interview"
)

var errExit = errors.New("exit requested")

var turnPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptAnswer, PromptShowHints, PromptRevealExample, PromptEndInterview},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("company", "c", "", "target company")
	runCmd.Flags().StringP("role", "r", "", "target role")
	runCmd.Flags().StringP("mode", "m", interview.ModePractice, "interview mode: practice or real")
	runCmd.Flags().IntP("questions", "q", 0, "number of planned questions (default from config)")
	runCmd.Flags().String("resume-file", "", "path to a plain-text resume")
	runCmd.Flags().String("jd-file", "", "path to a plain-text job description")
}

// run is the interactive interview command.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting mockview", zap.String("version", version))

	engine, err := buildEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the interview engine", zap.Error(err))
	}

	company, err := flagOrPrompt(cmd, "company", "Company")
	if err != nil {
		logger.Fatal("reading company", zap.Error(err))
	}
	role, err := flagOrPrompt(cmd, "role", "Role")
	if err != nil {
		logger.Fatal("reading role", zap.Error(err))
	}

	var resumeText string
	if path := cmd.Flag("resume-file").Value.String(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("reading resume file", zap.Error(err))
		}
		resumeText = string(data)
	}

	var jdText string
	if path := cmd.Flag("jd-file").Value.String(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("reading job description file", zap.Error(err))
		}
		jdText = string(data)
	}

	mode := cmd.Flag("mode").Value.String()
	questions, _ := cmd.Flags().GetInt("questions")

	start, err := engine.StartSession(ctx, interview.StartRequest{
		Company:       company,
		Role:          role,
		Mode:          mode,
		ResumeText:    resumeText,
		JDText:        jdText,
		QuestionCount: questions,
	})
	if err != nil {
		logger.Fatal("starting the session", zap.Error(err))
	}

	fmt.Printf("\nInterview for %s at %s (%d questions planned)\n", role, company, start.PlanLength)
	if start.BriefSummary != "" {
		fmt.Printf("%s\n", start.BriefSummary)
	}

	if err := interviewLoop(ctx, engine, start.SessionID, mode); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("interview failed", zap.Error(err))
	}

	printReport(ctx, engine, start.SessionID, logger)
}

func interviewLoop(ctx context.Context, engine *interview.Engine, sessionID, mode string) error {
	for {
		question, err := engine.NextQuestion(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("fetching next question: %w", err)
		}
		if question.Done {
			return nil
		}

		fmt.Printf("\n[%s] Question %d (%s):\n%s\n", question.Persona, question.TurnNumber, question.Topic, question.Question)

		if err := handleTurn(ctx, engine, sessionID, mode, question); err != nil {
			return err
		}
	}
}

func handleTurn(ctx context.Context, engine *interview.Engine, sessionID, mode string, question *interview.Question) error {
	for {
		action := PromptAnswer
		if mode == interview.ModePractice {
			var err error
			_, action, err = turnPrompt.Run()
			if err != nil {
				return errExit
			}
		}

		switch action {
		case PromptShowHints:
			printHints(question.Hints)
		case PromptRevealExample:
			example, err := engine.RevealExampleAnswer(sessionID)
			if err != nil {
				fmt.Printf("  (%s)\n", err)
				continue
			}
			fmt.Printf("\nExample answer:\n%s\n", example)
		case PromptEndInterview:
			return errExit
		case PromptAnswer:
			answer, err := readAnswer()
			if err != nil {
				return errExit
			}
			outcome, err := engine.SubmitAnswer(ctx, sessionID, interview.SubmitRequest{Answer: answer})
			if err != nil {
				return fmt.Errorf("submitting answer: %w", err)
			}
			printOutcome(outcome)
			return nil
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func readAnswer() (string, error) {
	answerPrompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer must not be empty")
			}
			return nil
		},
	}
	return answerPrompt.Run()
}

func printHints(hints *tools.HintData) {
	if hints == nil {
		fmt.Println("  (no hints available for this question)")
		return
	}

	if len(hints.Bullets) > 0 {
		fmt.Println("\nKey points to cover:")
		for _, bullet := range hints.Bullets {
			fmt.Printf("  - %s\n", bullet)
		}
	}
	if len(hints.PersonalHooks) > 0 {
		fmt.Println("From your background:")
		for _, hook := range hints.PersonalHooks {
			fmt.Printf("  - %s\n", hook)
		}
	}
	if len(hints.Avoid) > 0 {
		fmt.Println("Avoid:")
		for _, avoid := range hints.Avoid {
			fmt.Printf("  - %s\n", avoid)
		}
	}
}

func printOutcome(outcome *interview.TurnOutcome) {
	analysis := outcome.Analysis
	fmt.Printf("\n  %s (composite %d: confidence %d, specificity %d, star %d)\n",
		analysis.Quality, analysis.Composite,
		analysis.ConfidenceScore, analysis.SpecificityScore, analysis.STARScore,
	)
	if analysis.Summary != "" {
		fmt.Printf("  %s\n", analysis.Summary)
	}
	if outcome.Routing.Action == tools.ActionFollowUp {
		fmt.Println("  The interviewer wants to dig deeper.")
	}
}

func printReport(ctx context.Context, engine *interview.Engine, sessionID string, logger *zap.Logger) {
	data, err := engine.ReportJSON(ctx, sessionID)
	if err != nil {
		if errors.Is(err, interview.ErrEmptySession) {
			logger.Info("exiting", zap.String("reason", "no answered questions to evaluate"))
			return
		}
		logger.Fatal("evaluating the session", zap.Error(err))
	}

	fmt.Printf("\n===== Evaluation report =====\n%s\n", data)
}

func flagOrPrompt(cmd *cobra.Command, flag, label string) (string, error) {
	if value := strings.TrimSpace(cmd.Flag(flag).Value.String()); value != "" {
		return value, nil
	}

	input := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("%s must not be empty", strings.ToLower(label))
			}
			return nil
		},
	}
	return input.Run()
}
