package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/andrewpaige1/brickstat-api/apierr"
	"github.com/andrewpaige1/brickstat-api/catalog"
	"github.com/andrewpaige1/brickstat-api/config"
	"github.com/andrewpaige1/brickstat-api/estimator"
)

// lookup prints a set's catalog record and optionally estimates how long it
// takes to build. The set number comes from the first argument or a prompt.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.RebrickableAPIKey == "" {
		log.Fatal("REBRICKABLE_API_KEY not set")
	}

	client := catalog.New(catalog.Options{
		BaseURL: cfg.RebrickableBaseURL,
		APIKey:  cfg.RebrickableAPIKey,
		Timeout: cfg.CatalogTimeout,
		RPS:     cfg.CatalogRPS,
		Burst:   cfg.CatalogBurst,
	}, zap.NewNop())

	var setNum string
	if len(os.Args) > 1 {
		setNum = os.Args[1]
	}
	if err := run(context.Background(), client, setNum, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type setFetcher interface {
	FetchSet(ctx context.Context, setNum string) (*catalog.SetMetadata, error)
}

func run(ctx context.Context, client setFetcher, setNum string, in io.Reader, out io.Writer) error {
	p := &prompter{in: bufio.NewScanner(in), out: out}

	var err error
	if setNum == "" {
		if setNum, err = p.ask("Enter LEGO set number (e.g. 75192-1): "); err != nil {
			return err
		}
	}
	if setNum == "" {
		return errors.New("no set number given")
	}

	s, err := client.FetchSet(ctx, setNum)
	if errors.Is(err, apierr.ErrNotFound) {
		fmt.Fprintf(out, "Set %s not found\n", setNum)
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up %s: %w", setNum, err)
	}

	fmt.Fprintf(out, "Name:   %s\nYear:   %d\nPieces: %d\nImage:  %s\n", s.Name, s.Year, s.NumParts, s.ImageURL)

	answer, err := p.ask("Estimate build time? [y/N]: ")
	if err != nil || !strings.EqualFold(answer, "y") {
		return err
	}

	var levels [4]int
	for i, q := range []string{
		"Build style (1 slow, 2 normal, 3 fast): ",
		"Distraction level (1-10): ",
		"Organization level (1-10): ",
		"Difficulty level (1-5): ",
	} {
		if levels[i], err = p.askInt(q); err != nil {
			return err
		}
	}

	minutes, err := estimator.EstimateBuildMinutes(s.NumParts, levels[0], levels[1], levels[2], levels[3])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Estimated build time: %.1f minutes (%.1f hours)\n", minutes, minutes/60)
	return nil
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(q string) (string, error) {
	fmt.Fprint(p.out, q)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) askInt(q string) (int, error) {
	s, err := p.ask(q)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return n, nil
}
