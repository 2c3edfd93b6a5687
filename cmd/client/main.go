// Command client is a small CLI front-end over the device sync layer. It
// keeps its state in a local sqlite file and mirrors mutations to the server
// when a session exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"task-manager-go/internal/client"

	"go.uber.org/zap"
)

const usage = `usage: client [-server URL] [-data FILE] <command> [args]

commands:
  register <username> <email> <password>
  login <email> <password>
  logout
  list
  add <text...>
  done <id>
  rm <id>
  clear
  review <taskId> <rating 1-5> [comment]
  refresh
  lang [code]
`

func main() {
	server := flag.String("server", "http://localhost:3000", "API base URL")
	data := flag.String("data", "taskman.db", "local state file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	storage, err := client.OpenStorage(*data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer storage.Close()

	m, err := client.NewManager(storage, client.NewAPIClient(*server), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := run(context.Background(), m, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, m *client.Manager, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		if len(rest) != 3 {
			return fmt.Errorf("register needs <username> <email> <password>")
		}
		if err := m.Register(ctx, rest[0], rest[1], rest[2]); err != nil {
			return err
		}
		fmt.Println("registered as", rest[0])
	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("login needs <email> <password>")
		}
		if err := m.Login(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("logged in as", m.Session().User.Username)
	case "logout":
		return m.Logout()
	case "list":
		for _, t := range m.Tasks() {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Printf("[%s] %-8s %s  %s\n", mark, t.Sync, t.ID, t.Text)
		}
	case "add":
		if len(rest) == 0 {
			return fmt.Errorf("add needs task text")
		}
		text := ""
		for i, w := range rest {
			if i > 0 {
				text += " "
			}
			text += w
		}
		task, err := m.AddTask(ctx, text)
		if err != nil {
			return err
		}
		fmt.Println("added", task.ID)
	case "done":
		if len(rest) != 1 {
			return fmt.Errorf("done needs <id>")
		}
		task, err := m.ToggleTask(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Printf("completed=%v\n", task.Completed)
	case "rm":
		if len(rest) != 1 {
			return fmt.Errorf("rm needs <id>")
		}
		return m.DeleteTask(ctx, rest[0])
	case "clear":
		return m.ClearTasks(ctx)
	case "review":
		if len(rest) < 2 {
			return fmt.Errorf("review needs <taskId> <rating> [comment]")
		}
		rating, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("rating must be a number: %w", err)
		}
		comment := ""
		if len(rest) > 2 {
			comment = rest[2]
		}
		review, err := m.SubmitReview(ctx, rest[0], rating, comment)
		if err != nil {
			return err
		}
		fmt.Println("review", review.ID, "created")
	case "refresh":
		if err := m.Refresh(ctx); err != nil {
			return err
		}
		fmt.Println(len(m.Tasks()), "tasks")
	case "lang":
		if len(rest) == 0 {
			fmt.Println(m.Language())
			return nil
		}
		return m.SetLanguage(rest[0])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
