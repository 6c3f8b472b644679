package epicli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/epihealth/epi-app/conf"
	"github.com/epihealth/epi-app/epi/constants"
	"github.com/epihealth/epi-app/epi/database"
	"github.com/epihealth/epi-app/epi/servicemux"
	"github.com/epihealth/epi-app/epi/utils"
	"github.com/epihealth/epi-app/epi/web"
)

// App Name and usage.  Edit them here to prevent breaking tests
const Name = "epi"
const Usage = "Episode Prediction Insights API CLI"

func GetApp() *cli.App {
	return setUpApp()
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Version = constants.Version
	var migrationsDir string
	app.Commands = []cli.Command{
		{
			Name:  "start-api",
			Usage: "Start the API",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(app.Writer, "%s\n", "Starting epi...")

				db := database.GetDbConnection()
				api := web.NewAPI(db)

				// Accepts and redirects HTTP requests to HTTPS
				srv := &http.Server{
					Handler:      web.NewHTTPRouter(),
					Addr:         ":3001",
					ReadTimeout:  5 * time.Second,
					WriteTimeout: 5 * time.Second,
				}
				go func() { log.Fatal(srv.ListenAndServe()) }()

				apiServer := &http.Server{
					Handler:      api.NewAPIRouter(),
					ReadTimeout:  time.Duration(utils.GetEnvInt("API_READ_TIMEOUT", 10)) * time.Second,
					WriteTimeout: time.Duration(utils.GetEnvInt("API_WRITE_TIMEOUT", 20)) * time.Second,
					IdleTimeout:  time.Duration(utils.GetEnvInt("API_IDLE_TIMEOUT", 120)) * time.Second,
				}

				smux := servicemux.New(":3000")
				smux.AddServer(apiServer, "")
				smux.Serve()

				return nil
			},
		},
		{
			Name:     "migrate-db",
			Category: "Database tools",
			Usage:    "Apply schema migrations",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "migrations-dir",
					Usage:       "Directory containing the migration files",
					Value:       "db/migrations/epi",
					Destination: &migrationsDir,
				},
			},
			Action: func(c *cli.Context) error {
				return migrateDB(migrationsDir, conf.GetEnv("DATABASE_URL"))
			},
		},
	}
	return app
}

func migrateDB(migrationsDir, databaseURL string) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsDir), databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	log.Info("Database migrations complete")
	return nil
}
