package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stride/internal/capabilities"
	"stride/internal/config"
	"stride/internal/domain"
	"stride/internal/domain/models/plan"
	llmService "stride/internal/service/llm"
	"stride/internal/service/llm/agent"
	"stride/internal/service/llm/prompts"
	"stride/internal/service/llm/tools"
	planService "stride/internal/service/plan"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type options struct {
	kind       string
	model      string
	goal       string
	start      string
	end        string
	message    string
	peak       float64
	volumeType string
	vdot       float64
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.kind, "kind", "full_plan", "generation kind: full_plan, outline or coach")
	flag.StringVar(&opts.model, "model", "", "model override, optionally provider/model")
	flag.StringVar(&opts.goal, "goal", "", "runner's goal")
	flag.StringVar(&opts.start, "start", time.Now().Format("2006-01-02"), "plan start date (YYYY-MM-DD)")
	flag.StringVar(&opts.end, "end", "", "plan end date for outlines (YYYY-MM-DD)")
	flag.StringVar(&opts.message, "message", "", "question for the coach kind")
	flag.Float64Var(&opts.peak, "peak", 0, "peak weekly volume")
	flag.StringVar(&opts.volumeType, "volume-type", "distance", "volume unit: distance (km) or time (minutes)")
	flag.Float64Var(&opts.vdot, "vdot", 0, "current VDOT, 0 if unknown")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fail("invalid configuration: %v", err)
	}

	logger, logPath, err := setupLogger(cfg)
	if err != nil {
		fail("failed to set up logging: %v", err)
	}
	fmt.Printf("%sLogging to %s%s\n", colorBlue, logPath, colorReset)

	req, err := opts.request()
	if err != nil {
		fail("%v", err)
	}

	caps, err := capabilities.NewRegistry()
	if err != nil {
		fail("failed to load capabilities: %v", err)
	}
	providers := llmService.NewProviderRegistry(llmService.NewProviderFactory(cfg, logger), cfg.Provider)
	svc := planService.NewService(
		planService.ServiceConfig{DefaultModel: cfg.Model, MaxTokens: cfg.MaxTokens, MaxRounds: cfg.MaxRounds},
		providers,
		tools.BuildDefault(logger),
		planService.NewSessionRegistry(cfg.SessionRetention, nil),
		logger,
		planService.WithCapabilities(caps),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gen, err := svc.Start(ctx, req)
	if err != nil {
		fail("%v", err)
	}
	go func() {
		<-ctx.Done()
		gen.Session().Cancel()
	}()

	fmt.Printf("%s=== Generation %s (%s) ===%s\n", colorCyan, gen.ID(), req.Kind, colorReset)
	follow(gen)
	printResult(gen)
}

func (o options) request() (planService.Request, error) {
	kind, err := prompts.ParseKind(o.kind)
	if err != nil {
		return planService.Request{}, err
	}
	start, err := time.Parse("2006-01-02", o.start)
	if err != nil {
		return planService.Request{}, fmt.Errorf("-start: %w", err)
	}

	req := planService.Request{
		Kind:  kind,
		Model: o.model,
		Context: prompts.Context{
			Goal:      o.goal,
			StartDate: start,
			Message:   o.message,
			Plan: plan.ParseContext{
				PeakVolume: o.peak,
				VolumeType: plan.VolumeType(o.volumeType),
			},
		},
	}
	if o.end != "" {
		if req.Context.EndDate, err = time.Parse("2006-01-02", o.end); err != nil {
			return planService.Request{}, fmt.Errorf("-end: %w", err)
		}
	}
	if o.vdot > 0 {
		vdot := o.vdot
		req.Context.Plan.VDOT = &vdot
	}
	return req, nil
}

// follow prints status changes and answers clarifying questions from stdin
// until the generation finishes.
func follow(gen *planService.Generation) {
	scanner := bufio.NewScanner(os.Stdin)
	statuses, unsubscribe := gen.Session().Subscribe()
	defer unsubscribe()

	for status := range statuses {
		switch status.State {
		case agent.StateWaitingForInput:
			fmt.Printf("\n%s? %s%s\n", colorYellow, status.Question, colorReset)
			fmt.Print("> ")
			answer := ""
			if scanner.Scan() {
				answer = strings.TrimSpace(scanner.Text())
			}
			var err error
			if answer == "" {
				err = gen.Session().CancelPendingInput()
			} else {
				err = gen.Session().SubmitUserResponse(answer)
			}
			if err != nil {
				fmt.Printf("%s⚠ %v%s\n", colorYellow, err, colorReset)
			}
		case agent.StateExecutingTool:
			fmt.Printf("%s⏳ round %d: running %s%s\n", colorBlue, status.Round, status.Tool, colorReset)
		default:
			fmt.Printf("%s⏳ round %d: %s%s\n", colorBlue, status.Round, status.State, colorReset)
		}
	}
	<-gen.Done()
}

func printResult(gen *planService.Generation) {
	out, err := gen.Result()
	if err != nil {
		fail("generation failed (%s): %v", domain.ErrorKind(err), err)
	}
	if out.Cancelled {
		fmt.Printf("%s⚠ cancelled after %d rounds%s\n", colorYellow, out.Rounds, colorReset)
		return
	}

	fmt.Printf("%s✓ done in %d rounds (%d input / %d output tokens)%s\n\n",
		colorGreen, out.Rounds, out.Usage.InputTokens, out.Usage.OutputTokens, colorReset)
	if out.Text != "" {
		fmt.Println(out.Text)
		return
	}
	encoded, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(encoded))
}

// setupLogger writes debug logs to a file so the console stays readable.
func setupLogger(cfg *config.Config) (*slog.Logger, string, error) {
	dir := cfg.LogDir
	if dir == "" {
		dir = "logs"
	}
	f, err := config.SetupLogFile(dir, "plan_cli", cfg.LogMaxFiles)
	if err != nil {
		return nil, "", err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, f.Name(), nil
}

func fail(format string, args ...interface{}) {
	fmt.Printf("%s❌ "+format+"%s\n", append(append([]interface{}{colorRed}, args...), colorReset)...)
	os.Exit(1)
}
