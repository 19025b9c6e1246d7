package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mysimjee/ToDo/internal/attachments"
	"github.com/mysimjee/ToDo/internal/config"
	"github.com/mysimjee/ToDo/internal/db"
	"github.com/mysimjee/ToDo/internal/query"
	"github.com/mysimjee/ToDo/internal/reminder"
	"github.com/mysimjee/ToDo/internal/repository"
	"github.com/mysimjee/ToDo/internal/task"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const dueLayout = "2006-01-02 15:04"

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("todo %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    config.Config
	log    *slog.Logger
	repo   *repository.Repository
	sched  *reminder.Scheduler
	alarms *reminder.GocronAlarms
	photos *attachments.Copier
}

func run() error {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		return err
	}

	log := newLogger(cfg)

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	// A command-line process has no visible UI, so reminders always notify.
	foreground := &reminder.Foreground{}
	alarms := reminder.NewGocronAlarms()
	defer alarms.Stop()

	var notifier reminder.Notifier = reminder.NewLogNotifier(log)
	if !cfg.Notifications {
		notifier = noopNotifier{}
	}

	sched := reminder.NewScheduler(alarms, notifier, foreground, log)
	repo := repository.New(database, sched, log)
	defer repo.Close()

	a := &app{
		cfg:    cfg,
		log:    log,
		repo:   repo,
		sched:  sched,
		alarms: alarms,
		photos: attachments.NewCopier(cfg.AttachmentsDir, log),
	}

	cmd := "list"
	args := []string{}
	if len(os.Args) > 1 {
		cmd = os.Args[1]
		args = os.Args[2:]
	}

	ctx := context.Background()
	switch cmd {
	case "add":
		return a.add(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "done":
		return a.setCompleted(ctx, args, true)
	case "undone":
		return a.setCompleted(ctx, args, false)
	case "rm":
		return a.remove(ctx, args)
	case "remind":
		return a.remind(ctx)
	default:
		return fmt.Errorf("unknown command %q (want add, list, done, undone, rm or remind)", cmd)
	}
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "task name (required)")
	due := fs.String("due", "", "due date, e.g. \"2026-09-01 09:00\"")
	priority := fs.Int("priority", 1, "priority index, 1 is highest")
	tags := fs.String("tags", "", "comma-separated tags")
	photo := fs.String("photo", "", "path to a photo to attach")
	subs := fs.String("subs", "", "comma-separated subtask names")
	fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("task name is required")
	}

	editor := task.NewEditor(a.repo, a.sched, a.log)
	editor.SetName(*name)
	editor.SetPriority(*priority)

	if *due != "" {
		t, err := time.ParseInLocation(dueLayout, *due, time.Local)
		if err != nil {
			return fmt.Errorf("parsing due date: %w", err)
		}
		editor.SetDueDate(&t)
	}
	if *tags != "" {
		editor.AddTags(splitList(*tags))
	}
	for _, sub := range splitList(*subs) {
		editor.AddSubTask(sub)
	}
	if *photo != "" {
		copied, err := a.photos.Copy(*photo)
		if err != nil {
			a.log.Warn("photo not attached", "error", err)
		} else {
			editor.AttachPhoto(copied)
		}
	}

	saved, err := editor.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Added task %d: %s\n", saved.ID, saved.Name)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	completed := fs.Bool("completed", false, "show completed tasks instead of pending ones")
	fs.Parse(args)

	tasks, err := a.repo.GetTasksByCompletionStatus(ctx, *completed)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	grouped := query.GroupByDueDate(tasks)
	for _, key := range query.Keys(tasks) {
		fmt.Println(key)
		for _, tws := range grouped[key] {
			mark := " "
			if tws.Task.IsCompleted {
				mark = "x"
			}
			line := fmt.Sprintf("  [%s] %d  %s (p%d)", mark, tws.Task.ID, tws.Task.Name, tws.Task.Priority)
			if len(tws.Task.Tags) > 0 {
				line += "  #" + strings.Join(tws.Task.Tags, " #")
			}
			fmt.Println(line)
			for _, sub := range tws.SubTasks {
				mark := " "
				if sub.IsCompleted {
					mark = "x"
				}
				fmt.Printf("      [%s] %s\n", mark, sub.Name)
			}
		}
	}
	return nil
}

func (a *app) setCompleted(ctx context.Context, args []string, completed bool) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.repo.UpdateTaskCompletionStatus(ctx, id, completed); err != nil {
		return err
	}
	// Checking off a task checks off its checklist too.
	if completed {
		if err := a.repo.UpdateSubTasksCompletionStatusByTaskID(ctx, id, true); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	deleted, err := a.repo.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err := a.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	// The copied photo belongs to the task, not the user's files.
	if deleted.PhotoAttachment != "" {
		if err := a.photos.Remove(deleted.PhotoAttachment); err != nil {
			a.log.Warn("photo not removed", "path", deleted.PhotoAttachment, "error", err)
		}
	}
	return nil
}

// remind re-arms reminders for pending tasks and stays up to fire them.
func (a *app) remind(ctx context.Context) error {
	if err := a.repo.RescheduleAll(ctx); err != nil {
		return err
	}
	a.log.Info("reminder service running, press Ctrl-C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("task id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type noopNotifier struct{}

func (noopNotifier) Notify(int64, string, string) {}
