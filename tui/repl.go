package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/ragdoc"
)

// FormatAnswer renders an answer as plain text, optionally followed by a
// list of its source URLs.
func FormatAnswer(answer *ragdoc.Answer, sources bool) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(answer.Text))
	b.WriteString("\n")
	if sources {
		if urls := answer.SourceURLs(); len(urls) > 0 {
			b.WriteString("\nSources:\n")
			for _, u := range urls {
				fmt.Fprintf(&b, "  - %s\n", u)
			}
		}
	}
	return b.String()
}

// RunLines is the chat loop for non-terminal input: one question per line,
// answers written to out. A failed question is reported and the loop
// continues. It returns when in is exhausted, on "/exit", or when ctx is
// done.
func RunLines(ctx context.Context, session *ragdoc.Session, in io.Reader, out io.Writer, sources bool) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		answer, err := session.Ask(ctx, question)
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", errorText(err))
			continue
		}
		fmt.Fprintln(out, FormatAnswer(answer, sources))
	}
}

// errorText describes a failed question, including the last stage the
// query reached.
func errorText(err error) string {
	var qerr *ragdoc.QueryError
	if !errors.As(err, &qerr) {
		return messageOf(err)
	}
	return fmt.Sprintf("%s (after %s)", messageOf(qerr.Err), qerr.State)
}

func messageOf(err error) string {
	if ragdoc.ErrorCode(err) == ragdoc.EINTERNAL {
		return err.Error()
	}
	return ragdoc.ErrorMessage(err)
}
