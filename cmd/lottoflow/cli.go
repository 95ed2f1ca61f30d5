package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CommandArgs is a command name followed by "-name value" parameters.
type CommandArgs struct {
	commandName string
	params      map[string]string
}

func NewCommandArgs(args []string) *CommandArgs {
	var cmdName = ""
	var flags = make(map[string]string)
	for i := 1; i < len(args); i++ {
		var arg = args[i]
		if strings.HasPrefix(arg, "-") {
			if i < len(args)-1 {
				var k = strings.TrimLeft(arg, "-")
				flags[k] = args[i+1]
				i++
			}
		} else if cmdName == "" {
			cmdName = arg
		}
	}
	return &CommandArgs{
		commandName: cmdName,
		params:      flags,
	}
}

func (ca *CommandArgs) CommandName() string {
	return ca.commandName
}

func (ca *CommandArgs) GetString(name string, defaultVal string) string {
	var val, ok = ca.params[name]
	if !ok {
		return defaultVal
	}
	return val
}

func (ca *CommandArgs) GetInt(name string, defaultVal int) (int, error) {
	var val, ok = ca.params[name]
	if !ok {
		return defaultVal, nil
	}
	var v, err = strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parameter %v: %w", name, err)
	}
	return v, nil
}

func (ca *CommandArgs) GetUint64(name string, defaultVal uint64) (uint64, error) {
	var val, ok = ca.params[name]
	if !ok {
		return defaultVal, nil
	}
	var v, err = strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %v: %w", name, err)
	}
	return v, nil
}

func (ca *CommandArgs) GetFloat(name string, defaultVal float64) (float64, error) {
	var val, ok = ca.params[name]
	if !ok {
		return defaultVal, nil
	}
	var v, err = strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %v: %w", name, err)
	}
	return v, nil
}

func (ca *CommandArgs) GetBool(name string, defaultVal bool) (bool, error) {
	var val, ok = ca.params[name]
	if !ok {
		return defaultVal, nil
	}
	var v, err = strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("parameter %v: %w", name, err)
	}
	return v, nil
}

type CommandHandler struct {
	items map[string]func() error
}

func NewCommandHandler() *CommandHandler {
	return &CommandHandler{
		items: make(map[string]func() error),
	}
}

func (ch *CommandHandler) Add(name string, handler func() error) {
	ch.items[name] = handler
}

func (ch *CommandHandler) Names() []string {
	var names = make([]string, 0, len(ch.items))
	for name := range ch.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ch *CommandHandler) Execute(commandName string) error {
	handler, found := ch.items[commandName]
	if !found {
		return fmt.Errorf("command not found %q, available: %v", commandName, strings.Join(ch.Names(), ", "))
	}
	return handler()
}
