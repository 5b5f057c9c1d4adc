package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/pollclient"
	"github.com/pollboard/pollboard/internal/tally"
)

// pollctl is a small terminal front end over the API: list polls, show the
// ballot or the results, cast a vote.
func main() {
	var (
		baseURL string
		token   string
	)
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "pollboard API base URL")
	flag.StringVar(&token, "token", os.Getenv("POLLBOARD_TOKEN"), "access token")
	flag.Parse()

	if token == "" {
		fmt.Fprintln(os.Stderr, "no access token: pass -token or set POLLBOARD_TOKEN")
		os.Exit(1)
	}

	client := pollclient.New(baseURL, token)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.Refresh(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load polls:", err)
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "", "list":
		list(client)
	case "show":
		show(client, flag.Arg(1))
	case "vote":
		vote(client, flag.Arg(1))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want list, show or vote)\n", flag.Arg(0))
		os.Exit(1)
	}
}

func list(client *pollclient.Client) {
	for _, poll := range client.Polls() {
		mode, _ := client.Mode(poll.ID)
		fmt.Printf("%s  %-40s  [%s]\n", poll.ID, poll.Title, mode)
	}
}

func show(client *pollclient.Client, rawID string) {
	pollID := mustParseID(rawID)

	mode, err := client.Mode(pollID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if mode == tally.ModeBallot {
		for _, poll := range client.Polls() {
			if poll.ID == pollID {
				fmt.Println(poll.Title)
				for i, opt := range poll.Options {
					fmt.Printf("  %d) %s\n", i+1, opt.Text)
				}
			}
		}
		return
	}

	results, err := client.Results(pollID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, result := range results {
		fmt.Printf("  %-30s %4d votes  %5.1f%%\n", result.Text, result.Votes, result.Percentage)
	}
}

func vote(client *pollclient.Client, rawID string) {
	pollID := mustParseID(rawID)

	show(client, rawID)
	fmt.Print("option: ")

	reader := bufio.NewReader(os.Stdin)
	selection, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read selection:", err)
		os.Exit(1)
	}
	selection = strings.TrimSpace(selection)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.SubmitVote(ctx, pollID, selection); err != nil {
		switch {
		case errors.Is(err, pollclient.ErrAlreadyVoted):
			fmt.Fprintln(os.Stderr, "you already voted on this poll")
		case errors.Is(err, pollclient.ErrPollClosed):
			fmt.Fprintln(os.Stderr, "this poll is closed")
		case errors.Is(err, pollclient.ErrUnknownOption):
			fmt.Fprintln(os.Stderr, "no such option")
		case errors.Is(err, pollclient.ErrVoteRejected):
			fmt.Fprintln(os.Stderr, "the server rejected the vote; it did not count")
		default:
			fmt.Fprintln(os.Stderr, "the vote did not count:", err)
		}
		os.Exit(1)
	}

	fmt.Println("vote recorded")
	show(client, rawID)
}

func mustParseID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid poll id %q\n", raw)
		os.Exit(1)
	}
	return id
}
