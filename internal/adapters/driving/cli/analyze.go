package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixpath-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// maxMediaBytes bounds a single media file passed to the diagnosis call.
const maxMediaBytes = 20 << 20

var (
	analyzeEquipment   equipmentFlags
	analyzeDescription string
	analyzeMedia       []string
	analyzeSkill       string
	analyzeTools       []string
	analyzeBudget      string
	analyzeLocation    string
	analyzeOutput      string
	analyzeNoProgress  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [description]",
	Short: "Diagnose a fault and write a repair guide",
	Long: `Diagnoses an equipment fault from a description and optional photos, audio or
video, crawls repair documentation for the equipment, and writes a step-by-step
repair guide with tools, parts and where to buy them.

Manuals registered with 'fixpath manual register' for the same equipment are
searched alongside the crawled documentation.

Examples:
  fixpath analyze -c vehicle --make Honda --model Accord --year 2019 "clicking when turning"
  fixpath analyze -c appliance --make Whirlpool -m leak.jpg -d "water under the washer"
  fixpath analyze -c hvac -m rattle.wav -o json "rattling from the outdoor unit"`,
	Annotations: map[string]string{annotationPipeline: "true"},
	RunE:        runAnalyze,
}

func init() {
	analyzeEquipment.bind(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeDescription, "description", "d", "", "description of the problem")
	analyzeCmd.Flags().StringSliceVarP(&analyzeMedia, "media", "m", nil, "photo, audio or video file (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeSkill, "skill", "", "your skill level: beginner, intermediate or advanced")
	analyzeCmd.Flags().StringSliceVar(&analyzeTools, "tools", nil, "tools you already own (comma separated)")
	analyzeCmd.Flags().StringVar(&analyzeBudget, "budget", "", "spending limit for parts")
	analyzeCmd.Flags().StringVar(&analyzeLocation, "location", "", "where you buy parts (default United States)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", formatText, "output format: text, json or yaml")
	analyzeCmd.Flags().BoolVar(&analyzeNoProgress, "no-progress", false, "disable the interactive progress view")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if repairService == nil {
		return errors.New("repair service not configured")
	}
	if !validFormat(analyzeOutput) {
		return fmt.Errorf("unsupported output format %q", analyzeOutput)
	}

	req, err := buildAnalyzeRequest(args)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	printWarnings(cmd)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var guide *domain.RepairGuide
	if analyzeOutput == formatText && !analyzeNoProgress && isTerminal(cmd.ErrOrStderr()) {
		guide, err = tui.RunAnalysis(ctx, &tui.Ports{Repair: repairService}, req,
			tea.WithOutput(cmd.ErrOrStderr()))
	} else {
		guide, err = repairService.Analyze(ctx, req, stagePrinter(cmd))
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeOutput == formatText {
		writeGuideText(cmd.OutOrStdout(), guide)
		return nil
	}
	return writeStructured(cmd.OutOrStdout(), analyzeOutput, guide)
}

// stagePrinter reports stage transitions on stderr for text output.
func stagePrinter(cmd *cobra.Command) func(domain.StageEvent) {
	if analyzeOutput != formatText {
		return nil
	}
	w := cmd.ErrOrStderr()
	return func(ev domain.StageEvent) {
		if ev.Stage == domain.StageDone {
			return
		}
		fmt.Fprintf(w, "==> %s\n", tui.StageLabel(ev.Stage))
	}
}

func buildAnalyzeRequest(args []string) (domain.AnalyzeRequest, error) {
	description := strings.TrimSpace(analyzeDescription)
	if positional := strings.TrimSpace(strings.Join(args, " ")); positional != "" {
		if description != "" {
			description += ". "
		}
		description += positional
	}

	media, err := readMedia(analyzeMedia)
	if err != nil {
		return domain.AnalyzeRequest{}, err
	}

	return domain.AnalyzeRequest{
		Media:       media,
		Description: description,
		Equipment:   analyzeEquipment.query(),
		Preferences: domain.UserPreferences{
			SkillLevel:     strings.ToLower(strings.TrimSpace(analyzeSkill)),
			AvailableTools: analyzeTools,
			MaxBudget:      analyzeBudget,
		},
		Location: strings.TrimSpace(analyzeLocation),
	}, nil
}

// readMedia loads media files and checks that each is an image, audio or video.
func readMedia(paths []string) ([]domain.MediaPart, error) {
	parts := make([]domain.MediaPart, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading media: %w", err)
		}
		if info.Size() > maxMediaBytes {
			return nil, fmt.Errorf("%w: %s is larger than %d MB", domain.ErrInvalidInput, path, maxMediaBytes>>20)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading media: %w", err)
		}
		mimeType := detectMIMEType(path, data)
		if !isMediaType(mimeType) {
			return nil, fmt.Errorf("%w: %s (%s) is not an image, audio or video file",
				domain.ErrUnsupportedType, path, mimeType)
		}
		parts = append(parts, domain.MediaPart{Name: filepath.Base(path), MimeType: mimeType, Data: data})
	}
	return parts, nil
}

// detectMIMEType prefers the extension and falls back to content sniffing.
func detectMIMEType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}

func isMediaType(mt string) bool {
	return strings.HasPrefix(mt, "image/") || strings.HasPrefix(mt, "audio/") || strings.HasPrefix(mt, "video/")
}
