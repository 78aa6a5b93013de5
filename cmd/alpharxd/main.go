package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/alpharx/pkg/env"
	"github.com/robotalks/alpharx/pkg/framework"
)

func init() {
	env.SetupFlags()
	env.SetupServiceFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	e := env.NewConfig().MustNewEnv()
	defer e.Close()
	if err := e.Device.Init(); err != nil {
		log.Fatalf("init receiver: %v", err)
	}
	glog.Infof("receiver %s ready on %s backend", e.Config.Ref.Name(), e.Config.Backend)

	runnables, err := e.Service()
	if err != nil {
		log.Fatalln(err)
	}
	if err := framework.NewRunner().HandleSignals().Go(runnables...).Wait(); err != nil {
		glog.Error(err)
		glog.Flush()
		log.Fatalln(err)
	}
}
