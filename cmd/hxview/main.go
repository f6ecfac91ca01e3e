package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/pthm/hxview"
	"github.com/pthm/hxview/lib/dom"
	"github.com/pthm/hxview/lib/encoding"
	"github.com/pthm/hxview/lib/loader"
	"github.com/pthm/hxview/lib/logutil"
)

const version = "0.1.0"

// devKey signs programs when HXVIEW_KEY is unset.
const devKey = "hxview-dev-key"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "render":
		err = runRender(args, os.Stdout)
	case "compile":
		err = runCompile(args, os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
	case "inspect":
		err = runInspect(args, os.Stdin, os.Stdout)
	case "version":
		fmt.Printf("hxview version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hxview - compiled view templates and keyed list rendering

Usage:
  hxview <command> [arguments]

Commands:
  render [-v] <file.yaml>       Render the file's rows through its template as HTML
  compile [--raw] <file.yaml>   Print the patch program, or a signed dump when
                                stdout is not a terminal or --raw is given
  inspect [token]               Verify a signed dump (argument or stdin) and list it
  version                       Print version
  help                          Show this help

Environment:
  HXVIEW_KEY                    Key used to sign and verify dumps

Examples:
  hxview render todo.yaml
  hxview compile todo.yaml | hxview inspect`)
}

var errUsage = errors.New("missing template file")

func signer() *encoding.Signer {
	key := os.Getenv("HXVIEW_KEY")
	if key == "" {
		key = devKey
	}
	return encoding.NewSigner([]byte(key))
}

func parseFileArgs(args []string, flag string) (string, bool, error) {
	var set bool
	var file string
	for _, arg := range args {
		switch {
		case arg == flag:
			set = true
		case strings.HasPrefix(arg, "-"):
			return "", false, fmt.Errorf("unknown flag: %s", arg)
		default:
			file = arg
		}
	}
	if file == "" {
		return "", false, errUsage
	}
	return file, set, nil
}

func load(file string) (*loader.Document, *hxview.Compiled, error) {
	doc, err := loader.Load(file)
	if err != nil {
		return nil, nil, err
	}
	c, err := hxview.CompileAll(dom.New(), doc.Templates)
	if err != nil {
		return nil, nil, err
	}
	return doc, c, nil
}

func runRender(args []string, w io.Writer) error {
	file, verbose, err := parseFileArgs(args, "-v")
	if err != nil {
		return err
	}
	doc, c, err := load(file)
	if err != nil {
		return err
	}

	opts := []hxview.Option[any]{}
	if verbose {
		opts = append(opts, hxview.WithLogger[any](logutil.New(os.Stderr, "[hxview] ")))
	}
	if key := doc.KeyFunc(); key != nil {
		opts = append(opts, hxview.WithKey(key))
	}
	rows := hxview.NewReconciler(c, opts...)
	if err := rows.Add(hxview.Reset(doc.Rows)); err != nil {
		return err
	}

	body := dom.Element("body")
	view, err := rows.Render(body)
	if err != nil {
		return err
	}
	defer view.Dispose()

	if err := dom.Component(body.Children()...).Render(context.Background(), w); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func runCompile(args []string, w io.Writer, tty bool) error {
	file, raw, err := parseFileArgs(args, "--raw")
	if err != nil {
		return err
	}
	_, c, err := load(file)
	if err != nil {
		return err
	}

	if raw || !tty {
		token, err := signer().Sign(c)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, token)
		return err
	}
	return list(w, encoding.NewDump(c))
}

func runInspect(args []string, stdin io.Reader, w io.Writer) error {
	var token string
	switch len(args) {
	case 0:
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		token = strings.TrimSpace(line)
	case 1:
		token = args[0]
	default:
		return fmt.Errorf("inspect takes at most one token")
	}
	dump, err := signer().Verify(token)
	if err != nil {
		return err
	}
	return list(w, dump)
}

func list(w io.Writer, d *encoding.Dump) error {
	fmt.Fprintf(w, "roots: %d  embeds: %d\n", d.Roots, d.Embeds)
	for i, e := range d.Expressions {
		fmt.Fprintf(w, "expr %d: %s\n", i, e)
	}
	for i, e := range d.Events {
		fmt.Fprintf(w, "event %d: %s\n", i, e)
	}
	_, err := io.WriteString(w, d.Program.String())
	return err
}
