package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/quorumfund/treasury"
	"github.com/quorumfund/treasury/errors"
)

// Genesis is the application genesis file format. The treasury options
// live next to whatever the surrounding deployment stores there.
type Genesis struct {
	ChainID    string           `json:"chain_id"`
	AppOptions treasury.Options `json:"app_options"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(err, "loading genesis file")
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrap(err, "unmarshaling genesis file")
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one
// function. Order matters, an initializer reading state written by
// another must come after it.
func ChainInitializers(inits ...treasury.Initializer) treasury.Initializer {
	return chainInitializer{inits: inits}
}

type chainInitializer struct {
	inits []treasury.Initializer
}

// FromGenesis will pass opts to all initializers in the list, aborting
// at the first error.
func (c chainInitializer) FromGenesis(opts treasury.Options, db treasury.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}
