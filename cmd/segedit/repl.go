package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/segedit/segedit/segedit"
)

func runREPL(path string, cfg Config) error {
	session, err := segedit.NewSession(segedit.SessionOptions{
		Path:          path,
		CheckpointDir: cfg.CheckpointDir,
	})
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	term := liner.NewLiner()
	defer term.Close()
	term.SetCtrlCAborts(true)

	fmt.Printf("segedit: editing %s (%d bytes). Type 'help' for commands, 'quit' to exit.\n", path, session.GetComputedFileSize())

	for {
		input, err := term.Prompt("segedit> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}

			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		term.AppendHistory(input)

		if input == "quit" || input == "exit" {
			break
		}

		if err := dispatch(session, input, cfg); err != nil {
			fmt.Println("error:", err)
		}
	}

	return nil
}

func dispatch(session *segedit.Session, input string, cfg Config) error {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printHelp()
	case "size":
		fmt.Println(session.GetComputedFileSize())
	case "insert":
		return cmdInsert(session, args)
	case "overwrite":
		return cmdOverwrite(session, args)
	case "delete":
		return cmdDelete(session, args)
	case "undo":
		serial, err := session.Undo()
		if err != nil {
			return err
		}

		fmt.Println("undone serial:", serial)
	case "redo":
		serial, err := session.Redo()
		if err != nil {
			return err
		}

		fmt.Println("redone serial:", serial)
	case "clear":
		return session.Clear()
	case "checkpoint":
		if err := session.CreateCheckpoint(); err != nil {
			return err
		}

		fmt.Println("checkpoint created; checkpoints now:", session.NumCheckpoints())
	case "uncheckpoint":
		if err := session.DestroyLastCheckpoint(); err != nil {
			return err
		}

		fmt.Println("checkpoint destroyed; checkpoints now:", session.NumCheckpoints())
	case "save":
		return cmdSave(session, args, cfg)
	case "find":
		return cmdFind(session, args)
	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}

	return nil
}

func cmdInsert(session *segedit.Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: insert <offset> <text...>")
	}

	offset, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid offset: %w", err)
	}

	serial, err := session.Insert(offset, []byte(strings.Join(args[1:], " ")))
	if err != nil {
		return err
	}

	fmt.Println("serial:", serial)

	return nil
}

func cmdOverwrite(session *segedit.Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: overwrite <offset> <text...>")
	}

	offset, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid offset: %w", err)
	}

	serial, err := session.Overwrite(offset, []byte(strings.Join(args[1:], " ")))
	if err != nil {
		return err
	}

	fmt.Println("serial:", serial)

	return nil
}

func cmdDelete(session *segedit.Session, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: delete <offset> <length>")
	}

	offset, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid offset: %w", err)
	}

	length, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid length: %w", err)
	}

	serial, err := session.Delete(offset, length)
	if err != nil {
		return err
	}

	fmt.Println("serial:", serial)

	return nil
}

func cmdSave(session *segedit.Session, args []string, cfg Config) error {
	outPath := cfg.OutputPath
	if len(args) > 0 {
		outPath = args[0]
	}

	if outPath == "" {
		return fmt.Errorf("no output path configured; use 'save <path>' or --output")
	}

	final, err := session.Save(outPath, cfg.Overwrite)
	if err != nil {
		return err
	}

	fmt.Println("saved to", final)

	return nil
}

func cmdFind(session *segedit.Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: find <text>")
	}

	pattern := []byte(strings.Join(args, " "))

	sc, err := session.NewSearchContext(pattern, 0, session.GetComputedFileSize(), false)
	if err != nil {
		return err
	}
	defer sc.Close()

	count := 0

	for {
		found, err := sc.NextMatch(1)
		if err != nil {
			return err
		}

		if !found {
			break
		}

		fmt.Printf("match at offset %d\n", sc.MatchOffset())

		count++
	}

	fmt.Println("matches:", count)

	return nil
}

func printHelp() {
	fmt.Println(`commands:
  size                       print the current logical file size
  insert <offset> <text>     insert text at offset
  overwrite <offset> <text>  overwrite bytes starting at offset
  delete <offset> <length>   delete length bytes starting at offset
  undo / redo                undo or redo the last edit (or transaction group)
  clear                      discard all changes on the current checkpoint
  checkpoint                 flatten current content and push a checkpoint
  uncheckpoint                discard the last checkpoint's edits
  find <text>                count and print offsets of every match
  save [path]                save to path, or the configured output path
  quit / exit                leave the shell`)
}
