package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/travisjeffery/pipesim/protocol"
	"github.com/travisjeffery/pipesim/simulate"
	"github.com/travisjeffery/pipesim/simulate/config"
	"github.com/travisjeffery/pipesim/simulate/util"
)

func clientCmds() (cmds []*cobra.Command) {
	cmds = append(cmds, simulateCmd(), apiVersionsCmd())
	return
}

func clientFlags(cmd *cobra.Command) {
	cmd.Flags().String("server-addr", "127.0.0.1:9300", "Address of the server")
	cmd.Flags().String("client-id", "", "Client id sent with requests, random when empty")
	cmd.Flags().Int16("api-version", -1, "Simulate pipeline version to speak, negative to negotiate")
	cmd.Flags().Duration("timeout", config.DefaultClientConfig().RequestTimeout, "Request timeout")
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [file]",
		Short: "Simulate a pipeline over the docs in file, or stdin",
		Args:  cobra.MaximumNArgs(1),
		Run:   runSimulate,
	}
	clientFlags(cmd)
	cmd.Flags().String("id", "", "Id of the pipeline to simulate")
	cmd.Flags().String("content-type", "", "Content type of the source, guessed from the file extension when empty")
	cmd.Flags().Bool("verbose", false, "Ask for verbose results, left unset when not given")
	cmd.Flags().Bool("dump", false, "Dump the whole response")
	return cmd
}

func apiVersionsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "api-versions", Short: "List the api versions a server speaks", Run: runAPIVersions}
	clientFlags(cmd)
	return cmd
}

func dialServer(cmd *cobra.Command) *simulate.Conn {
	v := bindEnv(cmd.Flags())

	cfg := config.DefaultClientConfig()
	cfg.ClientID = v.GetString("client-id")
	if version := int16(v.GetInt("api-version")); version >= 0 {
		cfg.APIVersion = &version
	}
	cfg.RequestTimeout = v.GetDuration("timeout")

	conn, err := simulate.Dial(context.Background(), v.GetString("server-addr"), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error connecting to server: %v\n", err)
		os.Exit(1)
	}
	return conn
}

func runSimulate(cmd *cobra.Command, args []string) {
	v := bindEnv(cmd.Flags())

	var (
		source []byte
		err    error
		name   string
	)
	if len(args) == 0 || args[0] == "-" {
		source, err = ioutil.ReadAll(os.Stdin)
	} else {
		name = args[0]
		source, err = ioutil.ReadFile(name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading source: %v\n", err)
		os.Exit(1)
	}

	ct, err := contentType(v.GetString("content-type"), name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	req := &protocol.SimulatePipelineRequest{
		Source:      source,
		ContentType: ct,
	}
	if id := v.GetString("id"); id != "" {
		req.ID = &id
	}
	if cmd.Flags().Changed("verbose") || v.IsSet("verbose") {
		req.Verbose = protocol.NewOptionalBool(v.GetBool("verbose"))
	}

	conn := dialServer(cmd)
	defer conn.Close()

	resp, err := conn.SimulatePipeline(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error with request to server: %v\n", err)
		os.Exit(1)
	}
	if v.GetBool("dump") {
		fmt.Println(util.Dump(resp))
		return
	}
	printDocuments(os.Stdout, resp)
}

func printDocuments(w io.Writer, resp *protocol.SimulatePipelineResponse) {
	for _, doc := range resp.Documents {
		fmt.Fprintf(w, "%s\n", doc)
	}
}

// contentType picks the source's content type from the flag, then the file
// extension, then falls back to JSON.
func contentType(flag, name string) (protocol.ContentType, error) {
	if flag != "" {
		return protocol.ParseContentType(flag)
	}
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return protocol.YAML, nil
	case ".cbor":
		return protocol.CBOR, nil
	case ".smile", ".sml":
		return protocol.SMILE, nil
	}
	return protocol.JSON, nil
}

func runAPIVersions(cmd *cobra.Command, args []string) {
	conn := dialServer(cmd)
	defer conn.Close()

	resp, err := conn.APIVersions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error with request to server: %v\n", err)
		os.Exit(1)
	}
	for _, v := range resp.APIVersions {
		fmt.Printf("api key: %d, min version: %d, max version: %d\n", v.APIKey, v.MinVersion, v.MaxVersion)
	}
}
