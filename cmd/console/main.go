// Command console runs one survey in the terminal.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"surveyassistant/internal/config"
	"surveyassistant/internal/pkg/logger"
	"surveyassistant/internal/survey"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	logPath := flag.String("log", cfg.LogFilePath, "log file path")
	outPath := flag.String("out", "", "also write the final document to this file")
	flag.Parse()

	log := logger.NewFileLogger(*logPath)
	defer log.Sync()

	engine := survey.NewEngine(survey.DefaultCatalog(), survey.WithLogger(log))
	doc, err := run(os.Stdin, os.Stdout, engine)
	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
	if *outPath != "" && doc != nil {
		if err := os.WriteFile(*outPath, doc, 0o644); err != nil {
			color.Red("failed to write %s: %v", *outPath, err)
			os.Exit(1)
		}
	}
}

// run chats over in/out until the survey finishes or input ends. It
// returns the final document, or nil when input ran out first.
func run(in io.Reader, out io.Writer, engine *survey.Engine) ([]byte, error) {
	assistant := color.New(color.FgCyan, color.Bold)
	progress := color.New(color.Faint)
	you := color.New(color.FgGreen)

	assistant.Fprintf(out, "Assistant: %s\n", engine.Prompt())

	scanner := bufio.NewScanner(in)
	for {
		you.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return nil, scanner.Err()
		}

		reply := engine.Submit(scanner.Text())
		if reply.Done {
			color.New(color.FgYellow).Fprintln(out, "Survey complete. Final document:")
			fmt.Fprintln(out, string(reply.Document))
			return reply.Document, nil
		}
		progress.Fprintf(out, "[%d/%d]\n", reply.Progress.Answered, reply.Progress.TotalQuestions)
		assistant.Fprintf(out, "Assistant: %s\n", reply.Prompt)
	}
}
