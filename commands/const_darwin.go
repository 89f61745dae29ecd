package commands

const (
	_etc = "/usr/local/etc/com.github.fx-sheets"
	_var = "/usr/local/var/com.github.fx-sheets"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
