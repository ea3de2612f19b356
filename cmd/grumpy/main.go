// Package main runs the interactive Grumpy Tracker client: a shell for
// browsing the camera/format catalog and managing the user's session.
package main

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/grumpytracker/grumpy-client/internal/api"
	"github.com/grumpytracker/grumpy-client/internal/auth"
	"github.com/grumpytracker/grumpy-client/internal/config"
	"github.com/grumpytracker/grumpy-client/internal/logger"
	"github.com/grumpytracker/grumpy-client/internal/store"
)

var (
	version   string
	buildDate string
)

type shell struct {
	api     *api.Client
	session *auth.Manager
	// searches holds one sequencer per search command so a slow earlier
	// search cannot print over a fast later one.
	searches map[string]*api.Sequencer
}

// repl runs the interactive loop, accepting commands to browse the
// catalog and manage the session.
func (s *shell) repl() {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("grumpy> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		ctx := context.Background()

		switch args[0] {
		case "help":
			fmt.Println(`Available commands:
  login <username> <password>   signup   logout   whoami
  stats   makes   make <id>   cameras   camera <id>
  formats   format <id>   projects   project <id>
  sources   source <id>
  search-cameras <query>   search-projects <query>
  search-formats <field=value ...>
  add-project <tmdbId> <feature|episodic>
  attach <projectId> <formatId>
  vote <projectId> <formatId> <up|down>
  exit`)
		case "login":
			if len(args) < 3 {
				fmt.Println("Usage: login <username> <password>")
				continue
			}
			res := s.session.Login(ctx, args[1], args[2])
			if !res.OK {
				printMessages(res.Messages)
				continue
			}
			fmt.Printf("Logged in as %s\n", s.session.Session().CurrentUser)
		case "signup":
			res := s.session.Signup(ctx, promptNewUser(scanner))
			if !res.OK {
				printMessages(res.Messages)
				continue
			}
			fmt.Println("Account created. Please log in.")
		case "logout":
			s.session.Logout()
			fmt.Println("Logged out")
		case "whoami":
			sess := s.session.Session()
			if sess.Token == "" {
				fmt.Println("Not logged in")
			} else {
				fmt.Printf("%s (admin: %v)\n", sess.CurrentUser, sess.IsAdmin)
			}
		case "stats":
			printResult(s.api.GetStats(ctx))
		case "makes":
			printListResult(s.api.GetMakes(ctx))
		case "make":
			if id, ok := idArg(args, "make <id>"); ok {
				printResult(s.api.GetMakeDetails(ctx, id))
			}
		case "cameras":
			printListResult(s.api.GetCameras(ctx))
		case "camera":
			if id, ok := idArg(args, "camera <id>"); ok {
				printResult(s.api.GetCameraDetails(ctx, id))
			}
		case "formats":
			printListResult(s.api.GetFormats(ctx))
		case "format":
			if id, ok := idArg(args, "format <id>"); ok {
				printResult(s.api.GetFormatDetails(ctx, id))
			}
		case "projects":
			printListResult(s.api.GetProjects(ctx))
		case "project":
			if id, ok := idArg(args, "project <id>"); ok {
				printResult(s.api.GetProjectDetails(ctx, id))
			}
		case "sources":
			printListResult(s.api.GetSources(ctx))
		case "source":
			if id, ok := idArg(args, "source <id>"); ok {
				printResult(s.api.GetSourceDetails(ctx, id))
			}
		case "search-cameras":
			if len(args) < 2 {
				fmt.Println("Usage: search-cameras <query>")
				continue
			}
			query := strings.Join(args[1:], " ")
			s.search("cameras", func(ctx context.Context) ([]api.Record, error) {
				return s.api.FindCameras(ctx, query)
			})
		case "search-projects":
			if len(args) < 2 {
				fmt.Println("Usage: search-projects <query>")
				continue
			}
			query := strings.Join(args[1:], " ")
			s.search("projects", func(ctx context.Context) ([]api.Record, error) {
				return s.api.FindProjects(ctx, query)
			})
		case "search-formats":
			query := api.Record{}
			for _, pair := range args[1:] {
				if k, v, ok := strings.Cut(pair, "="); ok {
					query[k] = v
				}
			}
			if len(query) == 0 {
				fmt.Println("Usage: search-formats <field=value ...>")
				continue
			}
			s.search("formats", func(ctx context.Context) ([]api.Record, error) {
				return s.api.FindFormats(ctx, query)
			})
		case "add-project":
			if len(args) < 3 {
				fmt.Println("Usage: add-project <tmdbId> <feature|episodic>")
				continue
			}
			tmdbID, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("tmdbId must be a number")
				continue
			}
			printResult(s.api.AddTMDBProject(ctx, tmdbID, args[2]))
		case "attach":
			if len(args) < 3 {
				fmt.Println("Usage: attach <projectId> <formatId>")
				continue
			}
			projectID, err1 := strconv.Atoi(args[1])
			formatID, err2 := strconv.Atoi(args[2])
			if err1 != nil || err2 != nil {
				fmt.Println("ids must be numbers")
				continue
			}
			printResult(s.api.AddFormatToProject(ctx, projectID, formatID))
		case "vote":
			if len(args) < 4 || (args[3] != "up" && args[3] != "down") {
				fmt.Println("Usage: vote <projectId> <formatId> <up|down>")
				continue
			}
			projectID, err1 := strconv.Atoi(args[1])
			formatID, err2 := strconv.Atoi(args[2])
			if err1 != nil || err2 != nil {
				fmt.Println("ids must be numbers")
				continue
			}
			printResult(s.api.VoteOnProjectFormat(ctx, projectID, formatID, args[3]))
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// search issues the request in the background and prints the result only
// if no newer search of the same kind has started since.
func (s *shell) search(kind string, fn func(context.Context) ([]api.Record, error)) {
	seq, ok := s.searches[kind]
	if !ok {
		seq = &api.Sequencer{}
		s.searches[kind] = seq
	}
	ticket := seq.Next()
	go func() {
		records, err := fn(context.Background())
		if !seq.Accept(ticket) {
			return
		}
		if err != nil {
			printError(err)
			return
		}
		printRecords(records)
	}()
}

func idArg(args []string, usage string) (int, bool) {
	if len(args) < 2 {
		fmt.Println("Usage: " + usage)
		return 0, false
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("id must be a number")
		return 0, false
	}
	return id, true
}

func promptNewUser(scanner *bufio.Scanner) auth.NewUser {
	read := func(label string) string {
		fmt.Print(label + ": ")
		scanner.Scan()
		return strings.TrimSpace(scanner.Text())
	}
	return auth.NewUser{
		Username:  read("Username"),
		Password:  read("Password"),
		FirstName: read("First name"),
		LastName:  read("Last name"),
		Email:     read("Email"),
	}
}

func printResult(rec api.Record, err error) {
	if err != nil {
		printError(err)
		return
	}
	b, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Println(string(b))
}

func printListResult(records []api.Record, err error) {
	if err != nil {
		printError(err)
		return
	}
	printRecords(records)
}

func printRecords(records []api.Record) {
	if len(records) == 0 {
		fmt.Println("No results")
		return
	}
	b, _ := json.MarshalIndent(records, "", "  ")
	fmt.Println(string(b))
}

func printError(err error) {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		printMessages(reqErr.Messages)
		return
	}
	fmt.Println("Error:", err)
}

func printMessages(messages []string) {
	for _, msg := range messages {
		fmt.Println("Error:", msg)
	}
}

func main() {
	options := config.Parse()

	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("Grumpy Tracker Client\nVersion: %s\nBuild Date: %s\n",
			cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	appLog := logger.New()
	if err := appLog.Init(options.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = appLog.Log.Sync() }()

	client, err := api.New(api.Options{
		BaseURL: options.BaseURL,
		Timeout: options.Timeout,
		Logger:  appLog.Log,
	})
	if err != nil {
		appLog.Log.Fatal("cannot build API client", zap.Error(err))
	}

	credStore := store.NewFileStore(options.StorePath)
	session := auth.NewManager(client, credStore, appLog.Log)
	session.Initialize()

	if user := session.Session().CurrentUser; user != "" {
		fmt.Printf("Welcome back, %s\n", user)
	}

	s := &shell{api: client, session: session, searches: map[string]*api.Sequencer{}}
	s.repl()
}
