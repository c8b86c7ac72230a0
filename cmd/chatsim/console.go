package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"chatsim/pkg/models"
	"chatsim/pkg/responder"
	"chatsim/pkg/store"
)

// runConsole is the operator surface: a line-oriented loop that lets one
// person author messages as either side of any conversation. There is no
// network transport; "send" and "receive" are both operator actions.
func runConsole(ctx context.Context, st *store.Store, resp *responder.Responder) {
	sc := bufio.NewScanner(os.Stdin)
	current := firstConversation(st)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			var err error
			current, err = dispatch(st, resp, current, line)
			if err != nil {
				fmt.Println("error:", err)
			}
		}
	}
}

func firstConversation(st *store.Store) string {
	convs := st.Conversations()
	if len(convs) == 0 {
		return ""
	}
	return convs[0].ID
}

func dispatch(st *store.Store, resp *responder.Responder, current, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return current, nil
	}
	cmd := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "help":
		printHelp()
	case "list":
		for i, c := range st.Conversations() {
			marker := " "
			if c.ID == current {
				marker = "*"
			}
			fmt.Printf("%s %d. [%s] %s (%d messages)\n", marker, i+1, c.Kind, c.Name, len(c.Messages))
		}
	case "contacts":
		for _, c := range st.Contacts() {
			pin := ""
			if c.Pinned() {
				pin = " [pinned]"
			}
			fmt.Printf("%s (%s)%s %s\n", c.Name, c.ID, pin, c.Status)
		}
	case "open":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return current, fmt.Errorf("usage: open <n>")
		}
		convs := st.Conversations()
		if n < 1 || n > len(convs) {
			return current, fmt.Errorf("no conversation %d", n)
		}
		current = convs[n-1].ID
		if err := st.MarkAllSeenOnOpen(current, models.Me); err != nil {
			return current, err
		}
		printLog(st, current)
	case "say":
		return current, send(st, resp, current, models.Me, rest, 0)
	case "as":
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) < 2 {
			return current, fmt.Errorf("usage: as <contact> <text>")
		}
		return current, send(st, resp, current, parts[0], parts[1], 0)
	case "reply":
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) < 2 {
			return current, fmt.Errorf("usage: reply <msg-id> <text>")
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return current, fmt.Errorf("bad message id %q", parts[0])
		}
		return current, send(st, resp, current, models.Me, parts[1], id)
	case "react":
		parts := strings.Fields(rest)
		if len(parts) != 2 {
			return current, fmt.Errorf("usage: react <msg-id> <emoji>")
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return current, fmt.Errorf("bad message id %q", parts[0])
		}
		return current, st.ToggleReaction(current, id, models.Me, parts[1], 1)
	case "edit":
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) < 2 {
			return current, fmt.Errorf("usage: edit <msg-id> <text>")
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return current, fmt.Errorf("bad message id %q", parts[0])
		}
		return current, st.EditMessage(current, id, parts[1])
	case "del":
		id, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return current, fmt.Errorf("usage: del <msg-id>")
		}
		return current, st.DeleteMessage(current, id)
	case "newdm":
		c := st.CreateDirect(rest, rest)
		fmt.Println("created", c.ID)
		return c.ID, nil
	case "newgroup":
		parts := strings.Fields(rest)
		if len(parts) < 2 {
			return current, fmt.Errorf("usage: newgroup <name> <member>...")
		}
		c := st.CreateGroup(parts[0], parts[1:])
		fmt.Println("created", c.ID)
		return c.ID, nil
	case "log":
		printLog(st, current)
	case "quit", "exit":
		os.Exit(0)
	default:
		return current, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return current, nil
}

func send(st *store.Store, resp *responder.Responder, convID, sender, text string, replyTo uint64) error {
	if convID == "" {
		return fmt.Errorf("no open conversation; use open or newdm")
	}
	m, err := st.AppendMessage(convID, sender, store.Body{Text: text}, replyTo)
	if err != nil {
		return err
	}
	resp.HandleIncoming(convID, m)
	return nil
}

func printLog(st *store.Store, convID string) {
	conv, err := st.Conversation(convID)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, m := range conv.Messages {
		line := fmt.Sprintf("%4d %-10s %s", m.ID, m.Sender, m.Text)
		if m.Edited {
			line += " (edited)"
		}
		if m.ReplyTo != nil {
			line += fmt.Sprintf(" [re %d: %s]", m.ReplyTo.TargetID, m.ReplyTo.TargetText)
		}
		if len(m.Reactions) > 0 {
			for e, n := range models.ReactionTotals(m.Reactions) {
				line += fmt.Sprintf(" %s×%d", e, n)
			}
		}
		fmt.Println(line)
	}
}

func printHelp() {
	fmt.Println(`commands:
  list                  list conversations
  contacts              list roster
  open <n>              open conversation n (marks messages seen)
  log                   print the open conversation
  say <text>            send as operator
  as <contact> <text>   send as a contact
  reply <id> <text>     reply to a message
  react <id> <emoji>    toggle a reaction
  edit <id> <text>      edit a message
  del <id>              delete a message
  newdm <contact>       create a direct conversation
  newgroup <name> <m>.. create a group conversation
  quit`)
}
