package publisher

import (
	"fmt"

	"github.com/holon-run/shipit/pkg/hosting"
	"github.com/holon-run/shipit/pkg/remote"
)

type accountPages struct {
	sshKeys string
	tokens  string
}

var platformPages = map[remote.Platform]accountPages{
	remote.PlatformGitHub: {
		sshKeys: "https://github.com/settings/keys",
		tokens:  "https://github.com/settings/tokens",
	},
	remote.PlatformGitLab: {
		sshKeys: "https://gitlab.com/-/user_settings/ssh_keys",
		tokens:  "https://gitlab.com/-/user_settings/personal_access_tokens",
	},
	remote.PlatformBitbucket: {
		sshKeys: "https://bitbucket.org/account/settings/ssh-keys/",
		tokens:  "https://bitbucket.org/account/settings/app-passwords/",
	},
}

// SSHInstructions are the steps to set up key authentication for d.
func SSHInstructions(d remote.Descriptor) []string {
	host := d.Host
	if host == "" {
		host = d.Platform.Host()
	}
	steps := []string{
		"Check for an existing key: ls ~/.ssh/id_ed25519.pub",
		`Create one if there is none: ssh-keygen -t ed25519 -C "you@example.com"`,
		"Load it into the agent: ssh-add ~/.ssh/id_ed25519",
	}
	if pages, ok := platformPages[d.Platform]; ok {
		steps = append(steps, fmt.Sprintf("Add the public key to %s: %s", d.Platform.DisplayName(), pages.sshKeys))
	} else {
		steps = append(steps, "Add the public key to your git host account")
	}
	if host != "" {
		steps = append(steps, "Test the connection: ssh -T git@"+host)
	}
	return steps
}

// TokenInstructions are the steps to set up HTTPS token authentication for d.
func TokenInstructions(d remote.Descriptor) []string {
	var steps []string
	if pages, ok := platformPages[d.Platform]; ok {
		steps = append(steps, fmt.Sprintf("Create an access token with repository write access: %s", pages.tokens))
	} else {
		steps = append(steps, "Create an access token with repository write access on your git host")
	}
	if primary, fallback := hosting.TokenVars(d.Platform); primary != "" {
		steps = append(steps, fmt.Sprintf("Export it: export %s=<token> (or %s)", primary, fallback))
	}
	steps = append(steps,
		"Store it for git: git config --global credential.helper store",
		"Push once by hand and paste the token as the password",
	)
	return steps
}

// showAuthHelp prints setup steps matching the remote's transport: SSH
// steps for SSH remotes, token steps for HTTPS, both when unknown.
func (o *Orchestrator) showAuthHelp(d remote.Descriptor) {
	switch d.Scheme {
	case remote.SchemeSSH:
		o.Console.Instructions("Set up SSH access", SSHInstructions(d))
	case remote.SchemeHTTPS:
		o.Console.Instructions("Set up token access", TokenInstructions(d))
	default:
		o.Console.Instructions("Set up SSH access", SSHInstructions(d))
		o.Console.Instructions("Or set up token access", TokenInstructions(d))
	}
}
