// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package dueb

import (
	"context"
	"fmt"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"go.uber.org/zap"
)

// checkResponse unpacks the response IE of a confirmation and turns a
// failure result into a typed error
func checkResponse(op string, m *cmnd.Message) error {
	var resp cmnd.IEResponse
	if err := m.GetIE(&resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.Ok() {
		return &ResponseError{Op: op, Result: resp.Result}
	}
	return nil
}

// Hello probes the board without disturbing it. The board answers with a
// hello indication carrying its general status.
func (c *Client) Hello(ctx context.Context) (*cmnd.IEGeneralStatus, error) {
	m, err := c.Request(ctx, cmnd.NewHelloRequest(), cmnd.ServiceGeneral, cmnd.MsgGeneralHelloInd)
	if err != nil {
		return nil, err
	}
	var status cmnd.IEGeneralStatus
	if err := m.GetIE(&status); err != nil {
		return nil, fmt.Errorf("hello: %w", err)
	}
	return &status, nil
}

// Connect resets the board and waits for it to announce itself. The
// returned status reports the powerup mode and registration state the
// board booted into.
func (c *Client) Connect(ctx context.Context) (*cmnd.IEGeneralStatus, error) {
	m, err := c.Request(ctx, cmnd.NewResetRequest(), cmnd.ServiceGeneral, cmnd.MsgGeneralHelloInd)
	if err != nil {
		return nil, err
	}
	var status cmnd.IEGeneralStatus
	if err := m.GetIE(&status); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	c.log.Info("board announced itself",
		zap.String("powerup_mode", fmt.Sprintf("0x%02X", byte(status.PowerupMode))),
		zap.Bool("registered", status.Registered()),
		zap.String("device_id", fmt.Sprintf("0x%04X", status.DeviceID)),
	)
	return &status, nil
}

// Version returns the firmware version string
func (c *Client) Version(ctx context.Context) (string, error) {
	m, err := c.Request(ctx, cmnd.NewGetVersionRequest(), cmnd.ServiceGeneral, cmnd.MsgGeneralGetVersionRes)
	if err != nil {
		return "", err
	}
	var ver cmnd.IEVersion
	if err := m.GetIE(&ver); err != nil {
		return "", fmt.Errorf("version: %w", err)
	}
	return ver.Version, nil
}

// Status returns the board's current general status
func (c *Client) Status(ctx context.Context) (*cmnd.IEGeneralStatus, error) {
	m, err := c.Request(ctx, cmnd.NewGetStatusRequest(), cmnd.ServiceGeneral, cmnd.MsgGeneralGetStatusRes)
	if err != nil {
		return nil, err
	}
	var status cmnd.IEGeneralStatus
	if err := m.GetIE(&status); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return &status, nil
}

// EnterProductionMode switches the board into production mode. The mode
// only takes effect after a reset, so the board is restarted and the call
// returns once it has announced itself again.
func (c *Client) EnterProductionMode(ctx context.Context) error {
	m, err := c.Request(ctx, cmnd.NewProductionStartRequest(), cmnd.ServiceProduction, cmnd.MsgProdCfm)
	if err != nil {
		return err
	}
	if err := checkResponse("enter production mode", m); err != nil {
		return err
	}
	if _, err := c.Connect(ctx); err != nil {
		return fmt.Errorf("enter production mode: %w", err)
	}
	return nil
}

// ExitProductionMode switches the board back to normal operation,
// restarting it the same way EnterProductionMode does.
func (c *Client) ExitProductionMode(ctx context.Context) error {
	m, err := c.Request(ctx, cmnd.NewProductionEndRequest(), cmnd.ServiceProduction, cmnd.MsgProdCfm)
	if err != nil {
		return err
	}
	if err := checkResponse("exit production mode", m); err != nil {
		return err
	}
	if _, err := c.Connect(ctx); err != nil {
		return fmt.Errorf("exit production mode: %w", err)
	}
	return nil
}

// InProductionMode runs body with the board in production mode and always
// attempts to restore normal operation afterwards, even when body fails
func (c *Client) InProductionMode(ctx context.Context, body func(ctx context.Context) error) error {
	if err := c.EnterProductionMode(ctx); err != nil {
		return err
	}

	err := body(ctx)

	if exitErr := c.ExitProductionMode(ctx); exitErr != nil && err == nil {
		err = exitErr
	}
	return err
}

// GetParam reads one parameter by address type and id. The board echoes
// the parameter it answered for; a mismatch means the response belongs to
// some other exchange and is an error.
func (c *Client) GetParam(ctx context.Context, addr cmnd.ParamAddress, id byte) ([]byte, error) {
	m, err := c.Request(ctx, cmnd.NewParamGetRequest(addr, id), cmnd.ServiceParameters, cmnd.MsgParamGetRes)
	if err != nil {
		return nil, err
	}
	if err := checkResponse("get parameter", m); err != nil {
		return nil, err
	}

	var param cmnd.IEParameter
	if err := m.GetIE(&param); err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}
	if param.Type != addr || param.ID != id {
		return nil, fmt.Errorf("get parameter: board answered for 0x%02X/0x%02X, requested 0x%02X/0x%02X",
			byte(param.Type), param.ID, byte(addr), id)
	}
	return param.Data, nil
}

// SetParam writes one parameter by address type and id
func (c *Client) SetParam(ctx context.Context, addr cmnd.ParamAddress, id byte, data []byte) error {
	m, err := c.Request(ctx, cmnd.NewParamSetRequest(addr, id, data), cmnd.ServiceParameters, cmnd.MsgParamSetRes)
	if err != nil {
		return err
	}
	return checkResponse("set parameter", m)
}

// GetParamDirect reads length bytes at a raw memory offset
func (c *Client) GetParamDirect(ctx context.Context, addr cmnd.ParamAddress, offset uint32, length uint16) ([]byte, error) {
	m, err := c.Request(ctx, cmnd.NewParamGetDirectRequest(addr, offset, length), cmnd.ServiceParameters, cmnd.MsgParamGetDirectRes)
	if err != nil {
		return nil, err
	}
	if err := checkResponse("get direct", m); err != nil {
		return nil, err
	}

	var direct cmnd.IEParameterDirect
	if err := m.GetIE(&direct); err != nil {
		return nil, fmt.Errorf("get direct: %w", err)
	}
	if direct.Type != addr || direct.Offset != offset {
		return nil, fmt.Errorf("get direct: board answered for 0x%02X@%d, requested 0x%02X@%d",
			byte(direct.Type), direct.Offset, byte(addr), offset)
	}
	return direct.Data, nil
}

// SetParamDirect writes data at a raw memory offset
func (c *Client) SetParamDirect(ctx context.Context, addr cmnd.ParamAddress, offset uint32, data []byte) error {
	m, err := c.Request(ctx, cmnd.NewParamSetDirectRequest(addr, offset, data), cmnd.ServiceParameters, cmnd.MsgParamSetDirectRes)
	if err != nil {
		return err
	}
	if err := checkResponse("set direct", m); err != nil {
		return err
	}

	var direct cmnd.IEParameterDirect
	if err := m.GetIE(&direct); err != nil {
		return fmt.Errorf("set direct: %w", err)
	}
	if direct.Type != addr || direct.Offset != offset {
		return fmt.Errorf("set direct: board answered for 0x%02X@%d, requested 0x%02X@%d",
			byte(direct.Type), direct.Offset, byte(addr), offset)
	}
	return nil
}

// GetEeprom reads from the DECT EEPROM
func (c *Client) GetEeprom(ctx context.Context, offset uint32, length uint16) ([]byte, error) {
	return c.GetParamDirect(ctx, cmnd.ParamAddressDectEeprom, offset, length)
}

// SetEeprom writes to the DECT EEPROM
func (c *Client) SetEeprom(ctx context.Context, offset uint32, data []byte) error {
	return c.SetParamDirect(ctx, cmnd.ParamAddressDectEeprom, offset, data)
}

// SetRegion writes the radio parameter set for a regulatory region. The
// parameters are only writable in production mode, so the board is cycled
// through it and left in normal operation.
func (c *Client) SetRegion(ctx context.Context, region cmnd.Region) error {
	c.log.Info("writing region parameters", zap.String("region", region.Name))

	return c.InProductionMode(ctx, func(ctx context.Context) error {
		writes := []struct {
			id    cmnd.EepromParam
			value byte
		}{
			{cmnd.ParamDectCarrier, region.Settings.UsDect},
			{cmnd.ParamDectSupportFcc, region.Settings.SupportFcc},
			{cmnd.ParamDectFullPower, region.Settings.FullPower},
			{cmnd.ParamDectDeviation, region.Settings.Deviation},
			{cmnd.ParamDectPa2Comp, region.Settings.Pa2Comp},
		}
		for _, w := range writes {
			if err := c.SetParam(ctx, cmnd.ParamAddressHanEeprom, byte(w.id), []byte{w.value}); err != nil {
				return fmt.Errorf("region %s parameter 0x%02X: %w", region.Name, byte(w.id), err)
			}
		}
		return nil
	})
}

// SetPreset re-initializes the EEPROM from a numbered factory preset.
// The board only honors this in production mode.
func (c *Client) SetPreset(ctx context.Context, preset byte) error {
	m, err := c.Request(ctx, cmnd.NewPresetRequest(preset), cmnd.ServiceProduction, cmnd.MsgProdCfm)
	if err != nil {
		return err
	}
	return checkResponse("set preset", m)
}

// DeleteSubscription wipes the base registration by zeroing the first byte
// of the subscription record in the DECT EEPROM
func (c *Client) DeleteSubscription(ctx context.Context) error {
	return c.SetEeprom(ctx, cmnd.EepromSubscriptionOffset, []byte{0x00})
}

// Register starts a registration attempt, optionally pinned to one base by
// its RFPI, and waits for the over-the-air exchange to finish. The returned
// registration response carries the outcome and the assigned device address.
func (c *Client) Register(ctx context.Context, base *cmnd.IEBaseWanted) (*cmnd.IERegistrationResponse, error) {
	m, err := c.Request(ctx, cmnd.NewRegisterDeviceRequest(base), cmnd.ServiceDeviceManagement, cmnd.MsgDevMgntRegisterDeviceCfm)
	if err != nil {
		return nil, err
	}
	if err := checkResponse("register", m); err != nil {
		return nil, err
	}

	ind, err := c.WaitFor(ctx, cmnd.ServiceDeviceManagement, cmnd.MsgDevMgntRegisterDeviceInd)
	if err != nil {
		return nil, err
	}
	var reg cmnd.IERegistrationResponse
	if err := ind.GetIE(&reg); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &reg, nil
}

// Deregister drops the board's base registration
func (c *Client) Deregister(ctx context.Context) error {
	m, err := c.Request(ctx, cmnd.NewDeregisterDeviceRequest(), cmnd.ServiceDeviceManagement, cmnd.MsgDevMgntDeregisterDeviceCfm)
	if err != nil {
		return err
	}
	return checkResponse("deregister", m)
}

// SendAlert sends an alert notification from a unit and waits for the link
// confirmation reporting the transmission result
func (c *Client) SendAlert(ctx context.Context, unitID byte, unitType uint16, state uint32) error {
	m, err := c.Request(ctx, cmnd.NewAlertNotifyRequest(unitID, unitType, state),
		cmnd.ServiceGeneral, cmnd.MsgGeneralLinkCfm)
	if err != nil {
		return err
	}
	return checkResponse("send alert", m)
}

// SendTamper sends a tamper alert notification from a unit and waits for
// the link confirmation reporting the transmission result
func (c *Client) SendTamper(ctx context.Context, unitID byte, unitType uint16, state uint32) error {
	m, err := c.Request(ctx, cmnd.NewTamperNotifyRequest(unitID, unitType, state),
		cmnd.ServiceGeneral, cmnd.MsgGeneralLinkCfm)
	if err != nil {
		return err
	}
	return checkResponse("send tamper alert", m)
}

// SendFun sends one HAN-FUN frame and waits for the link confirmation
func (c *Client) SendFun(ctx context.Context, fun *cmnd.IEFun) error {
	req, err := cmnd.NewFunSendRequest(fun)
	if err != nil {
		return fmt.Errorf("send fun: %w", err)
	}
	m, err := c.Request(ctx, req, cmnd.ServiceGeneral, cmnd.MsgGeneralLinkCfm)
	if err != nil {
		return err
	}
	return checkResponse("send fun", m)
}

// SendRawData sends proprietary raw data to the base over the raw data
// interface and waits for the link confirmation
func (c *Client) SendRawData(ctx context.Context, deviceID uint16, data []byte) error {
	req, err := cmnd.NewRawDataRequest(deviceID, data)
	if err != nil {
		return fmt.Errorf("send raw data: %w", err)
	}
	m, err := c.Request(ctx, req, cmnd.ServiceGeneral, cmnd.MsgGeneralLinkCfm)
	if err != nil {
		return err
	}
	return checkResponse("send raw data", m)
}

// StartCall places a voice call from a unit and waits until the call is
// connected
func (c *Client) StartCall(ctx context.Context, unitID byte, settings *cmnd.IECallSettings) error {
	m, err := c.Request(ctx, cmnd.NewVoiceCallStartRequest(unitID, settings),
		cmnd.ServiceUleVoiceCall, cmnd.MsgUleCallStartCfm)
	if err != nil {
		return err
	}
	if err := checkResponse("start call", m); err != nil {
		return err
	}

	if _, err := c.WaitFor(ctx, cmnd.ServiceUleVoiceCall, cmnd.MsgUleCallConnectedInd); err != nil {
		return err
	}
	return nil
}

// EndCall hangs up the call on a unit
func (c *Client) EndCall(ctx context.Context, unitID byte) error {
	m, err := c.Request(ctx, cmnd.NewVoiceCallEndRequest(unitID),
		cmnd.ServiceUleVoiceCall, cmnd.MsgUleCallEndCfm)
	if err != nil {
		return err
	}
	return checkResponse("end call", m)
}
