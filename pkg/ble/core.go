package ble

import (
	"context"
	"time"

	"github.com/Krajiyah/gtlink/pkg/util"
	"github.com/currantlabs/ble"
	"github.com/currantlabs/ble/linux"
	"github.com/pkg/errors"
)

type coreMethods interface {
	SetDefaultDevice() error
	Dial(time.Duration, ble.Addr) (ble.Client, error)
}

type realCoreMethods struct{}

func (bc *realCoreMethods) Dial(timeout time.Duration, addr ble.Addr) (ble.Client, error) {
	ctx := ble.WithSigHandler(context.WithTimeout(context.Background(), timeout))
	var client ble.Client
	err := util.CatchErrs(func() error {
		c, e := ble.Dial(ctx, addr)
		client = c
		return e
	})
	return client, err
}

func (bc *realCoreMethods) SetDefaultDevice() error {
	return util.CatchErrs(func() error {
		device, err := linux.NewDevice()
		if err != nil {
			return errors.Wrap(err, "newLinuxDevice issue")
		}
		ble.SetDefaultDevice(device)
		return nil
	})
}
