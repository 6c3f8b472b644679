package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/epihealth/epi-app/epi/epicli"
)

func main() {
	if err := epicli.GetApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
