package completion

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmagar/workshop-cli/internal/ui"
)

// PrintUsage explains how to install a completion script.
func PrintUsage() {
	ui.PrintInfo("Usage: workshop completion <shell>")
	fmt.Println("Supported shells: bash, zsh, fish, powershell")
	fmt.Println("")
	fmt.Println("Installation examples:")
	fmt.Println("  Bash:       workshop completion bash > /etc/bash_completion.d/workshop")
	fmt.Println("  Zsh:        workshop completion zsh > ~/.zsh/completion/_workshop")
	fmt.Println("  Fish:       workshop completion fish > ~/.config/fish/completions/workshop.fish")
	fmt.Println("  PowerShell: workshop completion powershell > $PROFILE")
}

// Write prints the completion script for shell to w.
func Write(w io.Writer, shell string) error {
	var script string
	switch strings.ToLower(strings.TrimSpace(shell)) {
	case "bash":
		script = BashCompletion
	case "zsh":
		script = ZshCompletion
	case "fish":
		script = FishCompletion
	case "powershell", "pwsh":
		script = PowershellCompletion
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// BashCompletion is the bash completion script.
const BashCompletion = `# workshop bash completion script
# Installation: workshop completion bash > /etc/bash_completion.d/workshop

_workshop_completion() {
    local cur prev words cword
    _init_completion || return

    local commands="download info status cancel config completion"
    local global_flags="-g --game-dir -r --retries --help"

    case "$prev" in
        -g|--game-dir)
            COMPREPLY=($(compgen -d -- "$cur"))
            return
            ;;
        -k|--kind)
            COMPREPLY=($(compgen -W "map mod" -- "$cur"))
            return
            ;;
        config)
            COMPREPLY=($(compgen -W "show init" -- "$cur"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish powershell" -- "$cur"))
            return
            ;;
    esac

    local cmd=""
    local i
    for ((i = 1; i < cword; i++)); do
        case "${words[i]}" in
            download|info|status|cancel|config|completion)
                cmd="${words[i]}"
                break
                ;;
        esac
    done

    case "$cmd" in
        download)
            COMPREPLY=($(compgen -W "-k --kind --reconnect -y --yes --detach" -- "$cur"))
            ;;
        cancel)
            COMPREPLY=($(compgen -W "--force" -- "$cur"))
            ;;
        "")
            COMPREPLY=($(compgen -W "$commands $global_flags" -- "$cur"))
            ;;
    esac
}

complete -F _workshop_completion workshop
`

// ZshCompletion is the zsh completion script.
const ZshCompletion = `#compdef workshop
# workshop zsh completion script
# Installation: workshop completion zsh > ~/.zsh/completion/_workshop

_workshop() {
    local -a commands
    commands=(
        'download:Download a workshop item'
        'info:Show workshop item details'
        'status:Show the running download'
        'cancel:Cancel the running download'
        'config:Show or initialise the config file'
        'completion:Print a shell completion script'
    )

    _arguments -C \
        '(-g --game-dir)'{-g,--game-dir}'[Game installation directory]:directory:_files -/' \
        '(-r --retries)'{-r,--retries}'[Maximum download attempts]:attempts:' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                download)
                    _arguments \
                        '1:item id:' \
                        '(-k --kind)'{-k,--kind}'[Item kind]:kind:(map mod)' \
                        '--reconnect[Server address to offer a reconnect to]:address:' \
                        '(-y --yes)'{-y,--yes}'[Skip the download confirmation]' \
                        '--detach[Run the download in a background session]'
                    ;;
                info)
                    _arguments '1:item id:'
                    ;;
                cancel)
                    _arguments '--force[Kill the download process]'
                    ;;
                config)
                    _arguments '1:action:(show init)'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish powershell)'
                    ;;
            esac
            ;;
    esac
}

_workshop "$@"
`

// FishCompletion is the fish completion script.
const FishCompletion = `# workshop fish completion script
# Installation: workshop completion fish > ~/.config/fish/completions/workshop.fish

set -l commands download info status cancel config completion

complete -c workshop -f
complete -c workshop -n "not __fish_seen_subcommand_from $commands" -a download -d 'Download a workshop item'
complete -c workshop -n "not __fish_seen_subcommand_from $commands" -a info -d 'Show workshop item details'
complete -c workshop -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show the running download'
complete -c workshop -n "not __fish_seen_subcommand_from $commands" -a cancel -d 'Cancel the running download'
complete -c workshop -n "not __fish_seen_subcommand_from $commands" -a config -d 'Show or initialise the config file'
complete -c workshop -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Print a shell completion script'

complete -c workshop -s g -l game-dir -r -a '(__fish_complete_directories)' -d 'Game installation directory'
complete -c workshop -s r -l retries -r -d 'Maximum download attempts'

complete -c workshop -n '__fish_seen_subcommand_from download' -s k -l kind -r -a 'map mod' -d 'Item kind'
complete -c workshop -n '__fish_seen_subcommand_from download' -l reconnect -r -d 'Server address to offer a reconnect to'
complete -c workshop -n '__fish_seen_subcommand_from download' -s y -l yes -d 'Skip the download confirmation'
complete -c workshop -n '__fish_seen_subcommand_from download' -l detach -d 'Run the download in a background session'
complete -c workshop -n '__fish_seen_subcommand_from cancel' -l force -d 'Kill the download process'
complete -c workshop -n '__fish_seen_subcommand_from config' -a 'show init'
complete -c workshop -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'
`

// PowershellCompletion is the PowerShell completion script.
const PowershellCompletion = `# workshop PowerShell completion script
# Installation: workshop completion powershell >> $PROFILE

Register-ArgumentCompleter -Native -CommandName workshop -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $elements = $commandAst.CommandElements | ForEach-Object { $_.ToString() }
    $command = $elements | Where-Object { $_ -in @('download', 'info', 'status', 'cancel', 'config', 'completion') } | Select-Object -First 1

    $candidates = switch ($command) {
        'download'   { @('--kind', '--reconnect', '--yes', '--detach') }
        'cancel'     { @('--force') }
        'config'     { @('show', 'init') }
        'completion' { @('bash', 'zsh', 'fish', 'powershell') }
        $null        { @('download', 'info', 'status', 'cancel', 'config', 'completion', '--game-dir', '--retries') }
        default      { @() }
    }

    $candidates | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`
