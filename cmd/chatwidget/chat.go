package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/RichardoC/chatwidget/internal/render"
	"github.com/RichardoC/chatwidget/internal/selector"
	"github.com/RichardoC/chatwidget/internal/session"
	"github.com/RichardoC/chatwidget/internal/widget"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const helpText = `Команды:
  /like <id>, /dislike <id>  оценить ответ
  /lang ru|kz|en             язык ответов
  /agent <value>             выбрать агента
  /agents [поиск]            список агентов
  /retry                     повторить последний вопрос
  /clear                     очистить историю
  /help                      эта справка
  /quit                      выход`

func newChatCmd(a **app) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).runChat(cmd.Context(), os.Stdin, cmd.OutOrStdout(), width)
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width for bot replies")
	return cmd
}

func (a *app) runChat(ctx context.Context, in io.Reader, out io.Writer, width int) error {
	var opts []render.Option
	if a.cfg.MarkdownStyle != "none" {
		opts = append(opts, render.WithMarkdown(a.cfg.MarkdownStyle, width))
	}
	term, err := render.NewTerminal(out, opts...)
	if err != nil {
		return err
	}

	s, closer, err := a.openSession(session.WithListener(term))
	if err != nil {
		return err
	}
	defer closer.Close()

	ctrlOpts := []widget.Option{widget.WithLogger(a.logger)}
	if a.cfg.ConnectionError != "" {
		ctrlOpts = append(ctrlOpts, widget.WithConnectionError(a.cfg.ConnectionError))
	}
	ctrl := widget.New(s, a.client, ctrlOpts...)

	mon := a.monitor()
	mon.OnChange(func(online bool) {
		if online {
			fmt.Fprintln(out, "● бот онлайн")
		} else {
			fmt.Fprintln(out, "○ бот офлайн")
		}
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := mon.Start(); err != nil {
		return err
	}
	s.LoadHistory()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return runREPL(gctx, in, out, ctrl, a.catalog)
	})
	g.Go(func() error {
		<-gctx.Done()
		mon.Stop()
		return nil
	})
	return g.Wait()
}

// runREPL reads lines from in until EOF, /quit or ctx is done. Slash
// commands are handled locally, anything else is sent to the bot.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, ctrl *widget.Controller, catalog *selector.Catalog) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleLine(ctx, out, ctrl, catalog, line); quit {
				return nil
			}
		}
	}
}

func handleLine(ctx context.Context, out io.Writer, ctrl *widget.Controller, catalog *selector.Catalog, line string) bool {
	s := ctrl.Session()
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		submit(ctx, out, ctrl, line)
		return false
	}

	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(out, helpText)
	case "/like", "/dislike":
		rating := models.RatingLike
		if fields[0] == "/dislike" {
			rating = models.RatingDislike
		}
		if _, err := ctrl.Rate(ctx, arg, rating); err != nil {
			fmt.Fprintln(out, rateErrorText(err))
		}
	case "/clear":
		s.ClearHistory()
	case "/lang":
		if err := s.Config().SetLanguage(arg); err != nil {
			fmt.Fprintln(out, "Доступные языки: ru, kz, en")
			return false
		}
		fmt.Fprintln(out, "Язык:", arg)
	case "/agent":
		if err := s.Config().SetAgent(arg); err != nil {
			fmt.Fprintln(out, "Неизвестный агент. Список: /agents")
			return false
		}
		opt, _ := catalog.Lookup(arg)
		fmt.Fprintln(out, "Агент:", opt.Icon, opt.Label)
	case "/agents":
		printAgents(out, catalog, strings.Join(fields[1:], " "), s.Config().Agent())
	case "/retry":
		last, ok := s.LastUserMessage()
		if !ok {
			fmt.Fprintln(out, "Нет вопроса для повтора.")
			return false
		}
		submit(ctx, out, ctrl, last.Text)
	default:
		fmt.Fprintln(out, "Неизвестная команда. /help")
	}
	return false
}

func submit(ctx context.Context, out io.Writer, ctrl *widget.Controller, text string) {
	turn, err := ctrl.Submit(ctx, text)
	if err != nil {
		if errors.Is(err, widget.ErrBusy) || errors.Is(err, session.ErrTurnInProgress) {
			fmt.Fprintln(out, "Подождите ответа бота.")
			return
		}
		fmt.Fprintln(out, "error:", err)
		return
	}
	if turn != nil && turn.Agent != "" {
		fmt.Fprintf(out, "     (%s)\n", turn.Agent)
	}
}

func rateErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return "Сообщение не найдено."
	case errors.Is(err, session.ErrAlreadyRated):
		return "Вы уже оценили этот ответ."
	case errors.Is(err, session.ErrInvalidRating):
		return "Неверная оценка."
	case errors.Is(err, widget.ErrRatingPending):
		return "Оценка уже отправляется."
	default:
		return "Не удалось отправить оценку. Попробуйте ещё раз."
	}
}

func printAgents(out io.Writer, catalog *selector.Catalog, query, current string) {
	options := catalog.Filter(query)
	if len(options) == 0 {
		fmt.Fprintln(out, "Ничего не найдено")
		return
	}
	for _, o := range options {
		mark := " "
		if o.Value == current {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s %-20s %s\n", mark, o.Icon, o.Value, o.Label)
	}
}
