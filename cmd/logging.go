package cmd

import (
	"github.com/Ambroisie/beevee/log"
	"github.com/urfave/cli"
)

var logger = log.New("beevee")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
