package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/RichardoC/chatwidget/internal/render"
	"github.com/RichardoC/chatwidget/internal/session"
	"github.com/RichardoC/chatwidget/internal/transport"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the saved conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := render.NewTerminal(cmd.OutOrStdout(), render.WithSuggestions(nil))
			if err != nil {
				return err
			}
			s, closer, err := (*a).openSession(session.WithListener(term))
			if err != nil {
				return err
			}
			defer closer.Close()

			if len(s.LoadHistory()) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "История пуста.")
			}
			return nil
		},
	}
}

func newClearCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closer, err := (*a).openSession()
			if err != nil {
				return err
			}
			defer closer.Close()

			n := len(s.LoadHistory())
			s.ClearHistory()
			fmt.Fprintf(cmd.OutOrStdout(), "Удалено сообщений: %d\n", n)
			return nil
		},
	}
}

func newStatusCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the bot backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(*a).monitor().Check(cmd.Context()) {
				return errors.Errorf("bot offline (%s)", (*a).cfg.BackendURL)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "bot online")
			return nil
		},
	}
}

func newAgentsCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "agents [filter]",
		Short: "List the selectable agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			current := (*a).cfg.Agent
			if current == "" {
				current = (*a).catalog.First().Value
			}
			printAgents(cmd.OutOrStdout(), (*a).catalog, strings.Join(args, " "), current)
			return nil
		},
	}
}

func newScheduleCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Look up class schedules",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "groups",
			Short: "List groups with a timetable",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				groups, err := (*a).client.Groups(cmd.Context())
				if err != nil {
					return err
				}
				for _, g := range groups {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d курс, %d семестр  %s\n", g.Name, g.Year, g.Semester, g.Faculty.Name)
				}
				return nil
			},
		},
		dayCmd(a, transport.PeriodToday, "Today's lessons for a group"),
		dayCmd(a, transport.PeriodTomorrow, "Tomorrow's lessons for a group"),
		&cobra.Command{
			Use:   "week <group>",
			Short: "This week's lessons for a group",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				week, err := (*a).client.Week(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printWeek(cmd.OutOrStdout(), week)
				return nil
			},
		},
		&cobra.Command{
			Use:   "date <group> <YYYY-MM-DD>",
			Short: "Lessons for a group on a given day",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				day, err := time.Parse("2006-01-02", args[1])
				if err != nil {
					return errors.Wrapf(err, "date %q", args[1])
				}
				return printDay(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context) (transport.DaySchedule, error) {
					return (*a).client.ScheduleOn(ctx, args[0], day)
				})
			},
		},
	)
	return cmd
}

func dayCmd(a **app, period, short string) *cobra.Command {
	return &cobra.Command{
		Use:   period + " <group>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDay(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context) (transport.DaySchedule, error) {
				return (*a).client.Schedule(ctx, period, args[0])
			})
		},
	}
}

func printDay(ctx context.Context, out io.Writer, fetch func(context.Context) (transport.DaySchedule, error)) error {
	day, err := fetch(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s, %s\n", day.Group, day.Date)
	printLessons(out, day.Lessons)
	return nil
}

func printWeek(out io.Writer, week transport.WeekSchedule) {
	fmt.Fprintf(out, "%s, %s – %s (%d занятий)\n", week.Group, week.StartDate, week.EndDate, week.Total)
	dates := make([]string, 0, len(week.Days))
	for d := range week.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		fmt.Fprintln(out, "\n"+d)
		printLessons(out, week.Days[d])
	}
}

func printLessons(out io.Writer, lessons []transport.Lesson) {
	if len(lessons) == 0 {
		fmt.Fprintln(out, "  Занятий нет")
		return
	}
	for _, l := range lessons {
		line := fmt.Sprintf("  %s–%s  %s", l.StartTime, l.EndTime, l.SubjectName)
		if l.LessonTypeDisplay != "" {
			line += " (" + l.LessonTypeDisplay + ")"
		}
		if l.Classroom != "" {
			line += ", ауд. " + l.Classroom
		}
		if l.TeacherName != "" {
			line += ", " + l.TeacherName
		}
		if l.IsCancelled {
			line += "  [отменено"
			if l.CancellationReason != "" {
				line += ": " + l.CancellationReason
			}
			line += "]"
		}
		fmt.Fprintln(out, line)
	}
}
