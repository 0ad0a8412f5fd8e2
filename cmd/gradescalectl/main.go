// Command gradescalectl checks grading scale files locally and pushes them to
// a gradescaled server.
//
//	gradescalectl validate -f scale.json
//	gradescalectl defaults -type percent
//	gradescalectl push -f scale.json
//	gradescalectl get <id>
//	gradescalectl list
//	gradescalectl use-total-points
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-gradescale/internal/client"
	gs "github.com/mind-engage/mindengage-gradescale/internal/gradescale"
	"github.com/mind-engage/mindengage-gradescale/internal/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "gradescalectl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: gradescalectl <validate|defaults|push|get|list|use-total-points> [flags]")
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	file := fs.String("f", "", "grading scale JSON file (- for stdin)")
	typ := fs.String("type", "percent", "scale type for defaults")
	baseURL := fs.String("url", os.Getenv("GRADESCALE_URL"), "server base URL")
	courseID := fs.String("course", os.Getenv("GRADESCALE_COURSE_ID"), "course id")
	token := fs.String("token", os.Getenv("GRADESCALE_TOKEN"), "bearer token from /auth/login")
	timeout := fs.Duration("timeout", 15*time.Second, "request timeout")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level})
	if err != nil {
		return err
	}
	defer log.Sync()

	newClient := func() (*client.Client, error) {
		if *baseURL == "" {
			return nil, errors.New("-url or GRADESCALE_URL required")
		}
		return client.New(client.Config{
			BaseURL:      *baseURL,
			CourseID:     *courseID,
			TokenURL:     os.Getenv("GRADESCALE_TOKEN_URL"),
			ClientID:     os.Getenv("GRADESCALE_CLIENT_ID"),
			ClientSecret: os.Getenv("GRADESCALE_CLIENT_SECRET"),
			Token:        *token,
			Timeout:      *timeout,
		}), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch cmd {
	case "validate":
		rec, err := readRecord(*file)
		if err != nil {
			return err
		}
		return validate(out, rec)

	case "defaults":
		t, err := gs.ParseScaleType(*typ)
		if err != nil {
			return err
		}
		d := gs.NewDraft()
		d.Type = t
		return printJSON(out, gs.ToRecord(d))

	case "push":
		rec, err := readRecord(*file)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		ed := gs.NewEditor(c, gs.WithLogger(log))
		if err := ed.Open(&rec); err != nil {
			return err
		}
		if err := ed.Save(ctx); err != nil {
			var errs gs.ErrorSet
			if errors.As(err, &errs) {
				printErrors(out, errs)
				return errors.New("grading scale is not valid")
			}
			log.Debug("push failed", zap.Error(err))
			return err
		}
		return printJSON(out, rec)

	case "get":
		if fs.NArg() != 1 {
			return errors.New("usage: gradescalectl get <id>")
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		rec, err := c.Get(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		return printJSON(out, rec)

	case "list":
		c, err := newClient()
		if err != nil {
			return err
		}
		recs, err := c.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, recs)

	case "use-total-points":
		c, err := newClient()
		if err != nil {
			return err
		}
		return gs.NewEditor(c, gs.WithLogger(log)).UseTotalPoints(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func readRecord(path string) (gs.GradeScale, error) {
	var rec gs.GradeScale
	var r io.Reader
	switch path {
	case "":
		return rec, errors.New("-f required")
	case "-":
		r = os.Stdin
	default:
		f, err := os.Open(path)
		if err != nil {
			return rec, err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return rec, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

func validate(out io.Writer, rec gs.GradeScale) error {
	if rec.Type != "" && !rec.Type.Valid() {
		return fmt.Errorf("%w: unknown scale type %q", gs.ErrInvalidArgument, rec.Type)
	}
	errs := gs.FromRecord(rec).ValidateScale()
	if errs == nil {
		fmt.Fprintln(out, "ok")
		return nil
	}
	printErrors(out, errs)
	return errors.New("grading scale is not valid")
}

func printErrors(out io.Writer, errs gs.ErrorSet) {
	for _, k := range errs.Keys() {
		fe := errs[k]
		if fe.Row >= 0 {
			fmt.Fprintf(out, "row %d %s: %s\n", fe.Row+1, fe.Field, fe.Message)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", fe.Field, fe.Message)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
