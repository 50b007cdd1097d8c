// Command fleetgw runs the fleet gateway: it dials a set of podsim/pod
// TCP endpoints, exposes them over gRPC and HTTP, and shuts down the
// same way the teacher's cmd/driver/hasher-host runAPIServer does —
// listen in the background, wait on SIGINT/SIGTERM, then Shutdown with
// a bounded context.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"domes/internal/fleet"
	"domes/internal/transport"
	"domes/pkg/domespb"
)

func main() {
	httpAddr := flag.String("http-addr", ":8080", "address for the REST surface")
	grpcAddr := flag.String("grpc-addr", ":9090", "address for the gRPC surface")
	podsFlag := flag.String("pods", "", "comma-separated podID=host:port pairs, e.g. 1=127.0.0.1:9100,2=127.0.0.1:9101")
	flag.Parse()

	logger := log.New(os.Stdout, "[fleetgw] ", log.LstdFlags|log.Lmicroseconds)

	gateway := fleet.NewGateway(logger)
	for _, spec := range splitPods(*podsFlag) {
		podID, addr, err := parsePodSpec(spec)
		if err != nil {
			logger.Fatalf("invalid -pods entry %q: %v", spec, err)
		}
		t := transport.NewTCPTransport(addr)
		if err := t.Init(); err != nil {
			logger.Printf("pod %d: dial %s: %v (registered without a connection; requests to it will fail)", podID, addr, err)
		}
		gateway.AddPod(fleet.NewPodLink(podID, addr, t))
		logger.Printf("registered pod %d at %s", podID, addr)
	}

	grpcServer := grpc.NewServer()
	domespb.RegisterFleetServiceServer(grpcServer, gateway)

	grpcLn, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		logger.Fatalf("grpc listen %s: %v", *grpcAddr, err)
	}
	go func() {
		logger.Printf("gRPC server listening on %s", *grpcAddr)
		if err := grpcServer.Serve(grpcLn); err != nil {
			logger.Printf("grpc server error: %v", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:    *httpAddr,
		Handler: fleet.NewRouter(gateway),
	}
	go func() {
		logger.Printf("HTTP server listening on %s", *httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Printf("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Printf("http shutdown error: %v", err)
	}
	grpcServer.GracefulStop()
}

func splitPods(flagVal string) []string {
	if flagVal == "" {
		return nil
	}
	parts := strings.Split(flagVal, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePodSpec(spec string) (uint8, string, error) {
	idStr, addr, ok := strings.Cut(spec, "=")
	if !ok {
		return 0, "", fmt.Errorf("expected podID=host:port")
	}
	var id int
	if _, err := fmt.Sscanf(idStr, "%d", &id); err != nil || id < 0 || id > 255 {
		return 0, "", fmt.Errorf("invalid podID %q", idStr)
	}
	return uint8(id), addr, nil
}
