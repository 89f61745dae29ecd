package commands

const (
	_etc = "/usr/local/etc/fx-sheets"
	_var = "/usr/local/var/fx-sheets"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
