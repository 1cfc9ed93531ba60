// containers.go
//
// IT asset and software license tracking service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of itassetdb.
// itassetdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// itassetdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with itassetdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/itassetdb/data"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const appImageName = "itassetdb-test:latest"

// TestContainers holds the running containers of an integration environment
type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container
	AppContainer        testcontainers.Container
	AppBuilderContainer testcontainers.Container

	// DBHost and DBPort reach the database from the test process
	DBHost string
	DBPort string
	// BaseURL reaches the app container when one was started
	BaseURL string
}

// Terminate stops every started container and removes the network
func (tc *TestContainers) Terminate(t testing.TB) {
	ctx := context.Background()
	for _, c := range []struct {
		name string
		c    testcontainers.Container
	}{
		{"app", tc.AppContainer},
		{"app builder", tc.AppBuilderContainer},
		{"Authorizer", tc.AuthorizerContainer},
		{"database", tc.DBContainer},
	} {
		if c.c == nil {
			continue
		}
		if err := c.c.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate %s: %v", c.name, err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateTestContainers starts the database named by DB_IMAGE/DB_TYPE, an
// Authorizer when AUTHZ_IMAGE is set, and the app image when APP_CONTAINER=true.
// On error everything already started is terminated.
func CreateTestContainers(t testing.TB) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	if err := tc.startDatabase(ctx, t); err != nil {
		tc.Terminate(t)
		return nil, err
	}

	if os.Getenv("AUTHZ_IMAGE") != "" {
		if err := tc.startAuthorizer(ctx, t); err != nil {
			tc.Terminate(t)
			return nil, err
		}
	}

	if os.Getenv("APP_CONTAINER") == "true" {
		if err := tc.startApp(ctx, t); err != nil {
			tc.Terminate(t)
			return nil, err
		}
	}

	logMessage(t, "Test containers started successfully")
	return tc, nil
}

func (tc *TestContainers) startDatabase(ctx context.Context, t testing.TB) error {
	dbType := os.Getenv("DB_TYPE")
	tcpDBPort, err := nat.NewPort("tcp", os.Getenv("DB_PORT"))
	if err != nil {
		return fmt.Errorf("failed to create DB port: %w", err)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{string(tcpDBPort)},
			Env:          dbInitEnv(dbType),
			WaitingFor:   wait.ForListeningPort(tcpDBPort).WithStartupTimeout(90 * time.Second),
			Networks:     []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {os.Getenv("DB_HOST")},
			},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start database: %w", err)
	}
	tc.DBContainer = dbContainer

	host, err := dbContainer.Host(ctx)
	if err != nil {
		return err
	}
	port, err := dbContainer.MappedPort(ctx, tcpDBPort)
	if err != nil {
		return err
	}
	tc.DBHost, tc.DBPort = host, port.Port()
	logMessage(t, "DB_HOST=%s DB_PORT=%s", tc.DBHost, tc.DBPort)

	switch dbType {
	case "mysql", "mariadb":
		return initMySQL(tc.DBHost, tc.DBPort)
	}
	// postgres creates the app database and user from its environment
	return nil
}

func (tc *TestContainers) startAuthorizer(ctx context.Context, t testing.TB) error {
	tcpAuthzPort, err := nat.NewPort("tcp", os.Getenv("AUTHZ_PORT"))
	if err != nil {
		return fmt.Errorf("failed to create Authorizer port: %w", err)
	}

	authzDBConnection := fmt.Sprintf("root:%s@tcp(%s:%s)/%s",
		os.Getenv("DB_ROOT_PASSWORD"), os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("AUTHZ_DATABASE"))

	authorizer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("AUTHZ_IMAGE"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          os.Getenv("AUTHZ_PORT"),
				"DATABASE_TYPE": os.Getenv("DB_TYPE"),
				"DATABASE_NAME": os.Getenv("AUTHZ_DATABASE"),
				"DATABASE_URL":  authzDBConnection,
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "Administrator,Developer,GeneralStaff",
				"DEFAULT_ROLES": "GeneralStaff",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {"authorizer"},
			},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start Authorizer: %w", err)
	}
	tc.AuthorizerContainer = authorizer

	host, _ := authorizer.Host(ctx)
	port, _ := authorizer.MappedPort(ctx, tcpAuthzPort)
	logMessage(t, "AUTHZ_URL=http://%s:%s", host, port.Port())
	return nil
}

func (tc *TestContainers) startApp(ctx context.Context, t testing.TB) error {
	tcpAppPort, err := nat.NewPort("tcp", os.Getenv("PORT"))
	if err != nil {
		return fmt.Errorf("failed to create app port: %w", err)
	}

	env := map[string]string{
		"PORT":                    os.Getenv("PORT"),
		"DB_TYPE":                 os.Getenv("DB_TYPE"),
		"DB_HOST":                 os.Getenv("DB_HOST"),
		"DB_PORT":                 os.Getenv("DB_PORT"),
		"DB_APP_DATABASE":         os.Getenv("DB_APP_DATABASE"),
		"DB_APP_USER":             os.Getenv("DB_APP_USER"),
		"DB_APP_PASSWORD":         os.Getenv("DB_APP_PASSWORD"),
		"DB_APP_CONNECTION_LIMIT": os.Getenv("DB_APP_CONNECTION_LIMIT"),
		"JWT_SECRET":              os.Getenv("JWT_SECRET"),
		"SEED_ADMIN_EMAIL":        os.Getenv("SEED_ADMIN_EMAIL"),
		"SEED_ADMIN_PASSWORD":     os.Getenv("SEED_ADMIN_PASSWORD"),
		"LOG_FORMAT":              "json",
	}
	if tc.AuthorizerContainer != nil {
		env["AUTHZ_URL"] = fmt.Sprintf("http://authorizer:%s", os.Getenv("AUTHZ_PORT"))
		env["AUTHZ_CLIENT_ID"] = os.Getenv("AUTHZ_CLIENT_ID")
	}

	request := testcontainers.ContainerRequest{
		ExposedPorts: []string{string(tcpAppPort)},
		Env:          env,
		HostConfigModifier: func(hostConfig *container.HostConfig) {
			if os.Getenv("DEBUG_CONTAINER") == "true" {
				hostConfig.CapAdd = []string{"SYS_PTRACE"}
				hostConfig.SecurityOpt = []string{"apparmor:unconfined"}
			}
		},
		WaitingFor: wait.ForHTTP("/metrics").WithPort(tcpAppPort).WithStartupTimeout(60 * time.Second),
		Networks:   []string{tc.Network.Name},
	}

	exists, err := imageExists(ctx, appImageName)
	if err != nil {
		return fmt.Errorf("failed to check if image exists: %w", err)
	}

	if exists {
		logMessage(t, "Image %s exists, reusing...", appImageName)
		request.Image = appImageName
	} else {
		logMessage(t, "Image %s does not exist, building...", appImageName)
		if err := tc.buildApp(ctx, &request); err != nil {
			return err
		}
	}

	app, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	tc.AppContainer = app

	host, _ := app.Host(ctx)
	port, _ := app.MappedPort(ctx, tcpAppPort)
	tc.BaseURL = fmt.Sprintf("http://%s:%s", host, port.Port())
	logMessage(t, "BASE_URL=%s", tc.BaseURL)
	return nil
}

// buildApp builds the builder stage first so its layers are cached, then
// points request at the runtime stage.
func (tc *TestContainers) buildApp(ctx context.Context, request *testcontainers.ContainerRequest) error {
	sessionID := uuid.New().String()
	buildArgs := map[string]*string{
		"RESOURCE_REAPER_SESSION_ID": &sessionID,
	}

	buildContext := os.Getenv("TESTCONTAINERS_BUILD_CONTEXT")
	if buildContext == "" {
		buildContext = "../.."
	}

	builder, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			FromDockerfile: testcontainers.FromDockerfile{
				Context:    buildContext,
				Dockerfile: "Dockerfile",
				Repo:       "itassetdb-test-builder",
				Tag:        "latest",
				BuildArgs:  buildArgs,
				BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
					opts.Target = "builder"
				},
			},
		},
		Started: false,
	})
	if err != nil {
		return fmt.Errorf("failed to build itassetdb-test-builder: %w", err)
	}
	tc.AppBuilderContainer = builder

	nameParts := strings.SplitN(appImageName, ":", 2)
	request.FromDockerfile = testcontainers.FromDockerfile{
		Context:    buildContext,
		Dockerfile: "Dockerfile",
		Repo:       nameParts[0],
		Tag:        nameParts[1],
		KeepImage:  true,
		BuildArgs:  buildArgs,
		BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
			opts.Target = "runtime"
		},
	}
	return nil
}

func dbInitEnv(dbType string) map[string]string {
	switch dbType {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": os.Getenv("DB_APP_PASSWORD"),
			"POSTGRES_USER":     os.Getenv("DB_APP_USER"),
			"POSTGRES_DB":       os.Getenv("DB_APP_DATABASE"),
		}
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
			"MYSQL_DATABASE":      os.Getenv("DB_APP_DATABASE"),
			"MYSQL_USER":          os.Getenv("DB_APP_USER"),
			"MYSQL_PASSWORD":      os.Getenv("DB_APP_PASSWORD"),
		}
	}
	return nil
}

// initMySQL creates the databases and loads the table and privilege scripts as root
func initMySQL(host, port string) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/?multiStatements=false", os.Getenv("DB_ROOT_PASSWORD"), host, port))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	appDatabase, appUser := os.Getenv("DB_APP_DATABASE"), os.Getenv("DB_APP_USER")
	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", appDatabase),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", appUser, os.Getenv("DB_APP_PASSWORD")),
	}
	if authzDatabase := os.Getenv("AUTHZ_DATABASE"); authzDatabase != "" {
		statements = append(statements, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", authzDatabase))
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: when executing > %s", err, stmt)
		}
	}

	if err := ExecuteSQL(db, data.Render(data.InitdbMariaDBTables, appDatabase, appUser)); err != nil {
		return fmt.Errorf("failed to execute tables init sql: %w", err)
	}
	if err := ExecuteSQL(db, data.Render(data.InitdbMariaDBPrivileges, appDatabase, appUser)); err != nil {
		return fmt.Errorf("failed to execute privileges init sql: %w", err)
	}
	return nil
}

// ExecuteSQL runs a script of semicolon separated statements, skipping -- comments
func ExecuteSQL(db *sql.DB, script string) error {
	for _, q := range SplitStatements(script) {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

// SplitStatements strips -- comments outside quotes and splits on semicolons
func SplitStatements(script string) []string {
	lines := strings.Split(script, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, l := range lines {
		cleaned = append(cleaned, excludeComment(l))
	}

	var statements []string
	for _, q := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		if q = strings.TrimSpace(q); q != "" {
			statements = append(statements, q)
		}
	}
	return statements
}

func excludeComment(line string) string {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '-' && strings.HasPrefix(line[i:], "--"):
			return line[:i]
		}
	}
	return line
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}
	return false, nil
}

func logMessage(t testing.TB, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
