package constants

const (
	APP_NAME = "hacash"
	// prefix used to read config parameters from environment variables
	ENV_PREFIX = "HACASH"
	// config file name
	CONFIG_FILE_NAME = "config.toml"
	// config file type
	CONFIG_FILE_TYPE = "toml"
	// file holding the 16 byte hex node identity
	NODE_ID_FILE_NAME = "node.id"
	// optional warm cache of peers, one ip:port per line
	STABLE_NODES_FILE_NAME = "stable.nodes"
)
