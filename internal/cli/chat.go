package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/devs-assistent/server/internal/assistant"
	"github.com/devs-assistent/server/internal/assistant/export"
	"github.com/devs-assistent/server/internal/assistant/model"
	"github.com/devs-assistent/server/internal/assistant/orchestrator"
	errx "github.com/devs-assistent/server/internal/core/error"
	logx "github.com/devs-assistent/server/pkg/logger"
)

const chatHelp = `Escribe tu pregunta y pulsa Enter.
  /dictate          empieza a dictar (requiere --dictate)
  /stop             termina el dictado y envía la transcripción
  /history [n]      consultas recientes; con n reenvía la consulta n
  /example n        envía la consulta de ejemplo n
  /clear            borra el historial
  /export [ruta]    exporta la última respuesta a Markdown
  /theme [tema]     muestra o cambia el tema (light|dark)
  /quit             salir`

// syncWriter serialises writes from the prompt loop and the capture goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (a *app) newChatCmd() *cobra.Command {
	var (
		timeout time.Duration
		dictate string
		r       renderer
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation. Questions are read line by line from stdin.

With --dictate, a dictation stream (a file or named pipe fed by a speech-to-text
tool, one recognized phrase per line) can be captured with /dictate and sent
with /stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var opts assistant.Options
			if dictate != "" {
				f, err := os.Open(dictate)
				if err != nil {
					return fmt.Errorf("open dictation stream: %w", err)
				}
				defer f.Close()
				opts.Dictation = f
			}

			sess, err := a.newSession(ctx, a.cfg, opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			out := &syncWriter{w: cmd.OutOrStdout()}
			r.out = out
			sess.Capture.OnTranscript(func(text string) {
				fmt.Fprintf(out, "[dictado] %s\n", text)
			})

			loop := &chatLoop{sess: sess, out: out, render: r, timeout: timeout}
			return loop.run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "deadline for each completion request (0 = none)")
	cmd.Flags().StringVar(&dictate, "dictate", "", "dictation stream to capture with /dictate")
	cmd.Flags().BoolVar(&r.plain, "plain", false, "print raw Markdown instead of rendering it")
	return cmd
}

type chatLoop struct {
	sess    *assistant.Session
	out     io.Writer
	render  renderer
	timeout time.Duration
}

func (l *chatLoop) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(l.out, chatHelp)
	l.printExamples()

	readCtx, stop := context.WithCancel(ctx)
	defer stop()
	lines, readErr := readLines(readCtx, in)

	for {
		l.drainRecognitionErrors()
		fmt.Fprint(l.out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out)
			return nil
		case text, ok := <-lines:
			if !ok {
				fmt.Fprintln(l.out)
				return <-readErr
			}
			line = strings.TrimSpace(text)
		}

		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			l.submit(ctx, line)
			continue
		}

		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch name {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(l.out, chatHelp)
			l.printExamples()
		case "/dictate":
			l.startDictation(ctx)
		case "/stop":
			l.stopDictation(ctx)
		case "/history":
			if arg == "" {
				l.printHistory()
				continue
			}
			l.resubmit(ctx, arg)
		case "/example":
			l.submitExample(ctx, arg)
		case "/clear":
			if err := l.sess.Store.ClearHistory(ctx); err != nil {
				fmt.Fprintf(l.out, "No se pudo borrar el historial: %v\n", err)
				continue
			}
			fmt.Fprintln(l.out, "Historial borrado.")
		case "/export":
			l.exportLast(arg)
		case "/theme":
			l.theme(ctx, arg)
		default:
			fmt.Fprintf(l.out, "Comando desconocido %s (usa /help)\n", name)
		}
	}
}

// readLines scans in on its own goroutine so the prompt loop can also wait
// for cancellation. The error channel is filled before lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

func (l *chatLoop) printExamples() {
	fmt.Fprintln(l.out, "Ejemplos:")
	for i, q := range model.ExampleQueries {
		fmt.Fprintf(l.out, "%2d. %s\n", i+1, q)
	}
}

// resubmit sends the nth (1-based) history entry again.
func (l *chatLoop) resubmit(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(l.out, "Número de consulta no válido: %s\n", arg)
		return
	}
	q, ok := l.sess.Store.HistoryAt(n - 1)
	if !ok {
		fmt.Fprintf(l.out, "No hay ninguna consulta %d en el historial.\n", n)
		return
	}
	fmt.Fprintf(l.out, "> %s\n", q)
	l.submit(ctx, q)
}

func (l *chatLoop) submitExample(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(l.out, "Número de ejemplo no válido: %s\n", arg)
		return
	}
	q, ok := model.ExampleQuery(n - 1)
	if !ok {
		fmt.Fprintf(l.out, "No hay ningún ejemplo %d.\n", n)
		return
	}
	fmt.Fprintf(l.out, "> %s\n", q)
	l.submit(ctx, q)
}

func (l *chatLoop) submit(ctx context.Context, query string) {
	callCtx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	res, err := l.sess.Orchestrator.Submit(callCtx, query)
	switch {
	case errors.Is(err, orchestrator.ErrBusy):
		fmt.Fprintln(l.out, "Espera a que termine la respuesta anterior.")
		return
	case err != nil:
		fmt.Fprintf(l.out, "%v\n", err)
		return
	}
	if err := l.render.answer(ctx, l.sess, res.Answer); err != nil {
		logx.Error().Err(err).Msg("failed to print answer")
	}
}

func (l *chatLoop) startDictation(ctx context.Context) {
	if err := l.sess.Capture.Start(ctx); err != nil {
		if errx.IsKind(err, errx.KindRecognition) && !l.sess.Capture.Supported() {
			fmt.Fprintln(l.out, "El dictado no está disponible: inicia el chat con --dictate.")
			return
		}
		fmt.Fprintf(l.out, "No se pudo iniciar el dictado: %v\n", err)
		return
	}
	fmt.Fprintln(l.out, "Escuchando... usa /stop para enviar.")
}

// stopDictation ends the capture session and submits whatever was
// transcribed, including a session that already ended on its own.
func (l *chatLoop) stopDictation(ctx context.Context) {
	if err := l.sess.Capture.Stop(); err != nil {
		logx.Warn().Err(err).Msg("failed to stop dictation")
	}
	text := strings.TrimSpace(l.sess.Capture.Transcript())
	if text == "" {
		fmt.Fprintln(l.out, "No se ha transcrito nada.")
		return
	}
	fmt.Fprintf(l.out, "> %s\n", text)
	l.submit(ctx, text)
}

func (l *chatLoop) drainRecognitionErrors() {
	for {
		select {
		case err := <-l.sess.Capture.Errors():
			fmt.Fprintf(l.out, "Error de dictado: %v\n", err)
		default:
			return
		}
	}
}

func (l *chatLoop) printHistory() {
	history := l.sess.Store.History()
	if len(history) == 0 {
		fmt.Fprintln(l.out, "No hay consultas recientes.")
		return
	}
	for i, q := range history {
		fmt.Fprintf(l.out, "%2d. %s\n", i+1, q)
	}
}

func (l *chatLoop) exportLast(path string) {
	ans, err := export.LastAnswer(l.sess.Store.Turns())
	if err != nil {
		fmt.Fprintln(l.out, "Todavía no hay ninguna respuesta que exportar.")
		return
	}
	written, err := export.WriteFile(path, ans)
	if err != nil {
		fmt.Fprintf(l.out, "No se pudo exportar: %v\n", err)
		return
	}
	fmt.Fprintf(l.out, "Respuesta exportada a %s\n", written)
}

func (l *chatLoop) theme(ctx context.Context, arg string) {
	if arg == "" {
		theme, _ := l.sess.Store.Theme(ctx)
		fmt.Fprintf(l.out, "Tema actual: %s\n", theme)
		return
	}
	theme, ok := model.ParseTheme(arg)
	if !ok {
		fmt.Fprintln(l.out, "Tema desconocido (usa light o dark).")
		return
	}
	if err := l.sess.Store.SetTheme(ctx, theme); err != nil {
		fmt.Fprintf(l.out, "No se pudo guardar el tema: %v\n", err)
		return
	}
	fmt.Fprintf(l.out, "Tema actual: %s\n", theme)
}
