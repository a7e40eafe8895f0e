// Package cli holds terminal helpers shared by the command line client:
// shell completion, status lines and a spinner for long waits.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// Command is a subcommand as shown in completions.
type Command struct {
	Name  string
	Usage string
	// Flags are completed after the command, without the leading dash.
	Flags []string
}

// Shells lists the supported completion targets.
var Shells = []string{"bash", "zsh", "fish"}

type completionData struct {
	Prog     string
	Func     string
	Commands []Command
	Shells   string
}

var bashTemplate = template.Must(template.New("bash").Parse(`# bash completion for {{.Prog}}
{{.Func}}() {
    local cur prev
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[1]}"
    COMPREPLY=()

    if [ "${COMP_CWORD}" -eq 1 ]; then
        COMPREPLY=( $(compgen -W "{{range .Commands}}{{.Name}} {{end}}" -- "${cur}") )
        return 0
    fi

    case "${prev}" in
{{- range .Commands}}
        {{.Name}})
{{- if eq .Name "completion"}}
            COMPREPLY=( $(compgen -W "{{$.Shells}}" -- "${cur}") )
{{- else}}
            COMPREPLY=( $(compgen -W "{{range .Flags}}-{{.}} {{end}}" -- "${cur}") )
{{- end}}
            ;;
{{- end}}
    esac
    return 0
}
complete -F {{.Func}} {{.Prog}}
`))

var zshTemplate = template.Must(template.New("zsh").Parse(`#compdef {{.Prog}}

{{.Func}}() {
    local -a commands
    commands=(
{{- range .Commands}}
        '{{.Name}}:{{.Usage}}'
{{- end}}
    )

    _arguments -C '1: :->command' '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
{{- range .Commands}}
                {{.Name}})
{{- if eq .Name "completion"}}
                    _values 'shell' {{$.Shells}}
{{- else}}
                    _values 'flag'{{range .Flags}} '-{{.}}'{{end}}
{{- end}}
                    ;;
{{- end}}
            esac
            ;;
    esac
}

{{.Func}} "$@"
`))

var fishTemplate = template.Must(template.New("fish").Parse(`# fish completion for {{.Prog}}
{{- range .Commands}}
complete -c {{$.Prog}} -f -n "__fish_use_subcommand" -a "{{.Name}}" -d "{{.Usage}}"
{{- $cmd := .Name}}
{{- range .Flags}}
complete -c {{$.Prog}} -n "__fish_seen_subcommand_from {{$cmd}}" -o {{.}}
{{- end}}
{{- end}}
complete -c {{.Prog}} -f -n "__fish_seen_subcommand_from completion" -a "{{.Shells}}"
`))

// WriteCompletion writes the completion script for shell to w.
func WriteCompletion(w io.Writer, shell, prog string, cmds []Command) error {
	var tmpl *template.Template
	switch shell {
	case "bash":
		tmpl = bashTemplate
	case "zsh":
		tmpl = zshTemplate
	case "fish":
		tmpl = fishTemplate
	default:
		return fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(Shells, ", "))
	}
	data := completionData{
		Prog:     prog,
		Func:     "_" + strings.NewReplacer("-", "_", ".", "_").Replace(prog),
		Commands: cmds,
		Shells:   strings.Join(Shells, " "),
	}
	return tmpl.Execute(w, data)
}
