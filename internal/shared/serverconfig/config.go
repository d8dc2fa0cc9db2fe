package serverconfig

import (
	"github.com/Chinaskijl/stttg/internal/shared/config"
)

const defaultConfigRelPath = "configs/conf.yml"

var Conf Config

// Load reads the server config from cfgPath (or configs/conf.yml) into Conf
// and fills unset tunables with their defaults.
func Load(cfgPath string) {
	if cfgPath == "" {
		cfgPath = defaultConfigRelPath
	}
	config.Load(cfgPath, &Conf)
	Conf.Game = Conf.Game.WithDefaults()
	Conf.Persistence = Conf.Persistence.WithDefaults()
}
