// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package d3d9

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/gogpu/videorender/driver"
)

// DXVA2 service, decoder and processor vtable slots.
const (
	vasCreateSurface         = 3
	decGetDecoderDeviceGuids = 4
	decGetDecoderConfigs     = 6
	decCreateVideoDecoder    = 7
	vpsGetVideoProcessorCaps = 8
	vpsGetProcAmpRange       = 9
	vpsCreateVideoProcessor  = 11
	vpVideoProcessBlt        = 8
)

const (
	dxva2DecoderRenderTarget    = 0
	dxva2MaxProcessorSubStreams = 0
)

// videoDesc is DXVA2_VideoDesc.
type videoDesc struct {
	SampleWidth        uint32
	SampleHeight       uint32
	SampleFormat       uint32
	Format             uint32
	InputFreqNum       uint32
	InputFreqDen       uint32
	OutputFreqNum      uint32
	OutputFreqDen      uint32
	UABProtectionLevel uint32
	Reserved           uint32
}

func toVideoDesc(d *driver.VideoDesc) *videoDesc {
	return &videoDesc{
		SampleWidth:  uint32(d.Width),
		SampleHeight: uint32(d.Height),
		SampleFormat: d.SampleFormat.Pack(),
		Format:       toD3DFormat(d.Format),
	}
}

type decoderService struct {
	obj *object
}

func (s *decoderService) DecoderProfiles() ([]driver.GUID, error) {
	var n uint32
	var guids *driver.GUID
	if err := s.obj.hr(decGetDecoderDeviceGuids, uintptr(unsafe.Pointer(&n)), uintptr(unsafe.Pointer(&guids))); err != nil {
		return nil, fmt.Errorf("GetDecoderDeviceGuids: %w", err)
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(guids))
	return append([]driver.GUID(nil), unsafe.Slice(guids, n)...), nil
}

func (s *decoderService) DecoderConfigs(profile driver.GUID, desc *driver.VideoDesc) ([]driver.DecoderConfig, error) {
	var n uint32
	var cfgs *driver.DecoderConfig
	err := s.obj.hr(decGetDecoderConfigs,
		uintptr(unsafe.Pointer(&profile)), uintptr(unsafe.Pointer(toVideoDesc(desc))), 0,
		uintptr(unsafe.Pointer(&n)), uintptr(unsafe.Pointer(&cfgs)))
	if err != nil {
		return nil, fmt.Errorf("GetDecoderConfigurations: %w", err)
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(cfgs))
	return append([]driver.DecoderConfig(nil), unsafe.Slice(cfgs, n)...), nil
}

func (s *decoderService) CreateSurfaces(width, height, count int, format driver.Format) ([]driver.Surface, error) {
	if count < 1 {
		return nil, driver.ErrInvalidCall
	}
	objs := make([]*object, count)
	err := s.obj.hr(vasCreateSurface,
		uintptr(width), uintptr(height), uintptr(count-1),
		uintptr(toD3DFormat(format)), d3dpoolDefault, 0, dxva2DecoderRenderTarget,
		uintptr(unsafe.Pointer(&objs[0])), 0)
	if err != nil {
		return nil, fmt.Errorf("CreateSurface: %w", err)
	}
	surfs := make([]driver.Surface, count)
	for i, o := range objs {
		surfs[i] = &surface{obj: o, width: width, height: height, format: format}
	}
	return surfs, nil
}

func (s *decoderService) CreateDecoder(profile driver.GUID, desc *driver.VideoDesc, cfg *driver.DecoderConfig, targets []driver.Surface) (driver.Decoder, error) {
	if len(targets) == 0 {
		return nil, driver.ErrInvalidCall
	}
	objs := make([]*object, len(targets))
	for i, t := range targets {
		ds, err := unwrapSurface(t)
		if err != nil {
			return nil, err
		}
		objs[i] = ds.obj
	}
	var dec *object
	err := s.obj.hr(decCreateVideoDecoder,
		uintptr(unsafe.Pointer(&profile)), uintptr(unsafe.Pointer(toVideoDesc(desc))), uintptr(unsafe.Pointer(cfg)),
		uintptr(unsafe.Pointer(&objs[0])), uintptr(len(objs)), uintptr(unsafe.Pointer(&dec)))
	if err != nil {
		return nil, fmt.Errorf("CreateVideoDecoder: %w", err)
	}
	return &decoder{obj: dec}, nil
}

func (s *decoderService) Release() {
	s.obj.release()
	s.obj = nil
}

// decoder is an IDirectXVideoDecoder. Its pointer is what a decode
// framework binds to.
type decoder struct {
	obj *object
}

// Handle returns the IDirectXVideoDecoder pointer.
func (d *decoder) Handle() uintptr { return uintptr(unsafe.Pointer(d.obj)) }

func (d *decoder) Release() {
	d.obj.release()
	d.obj = nil
}

type processorService struct {
	obj *object
}

func (s *processorService) ProcessorCaps(device driver.GUID, desc *driver.VideoDesc, target driver.Format) (driver.ProcessorCaps, error) {
	var caps driver.ProcessorCaps
	err := s.obj.hr(vpsGetVideoProcessorCaps,
		uintptr(unsafe.Pointer(&device)), uintptr(unsafe.Pointer(toVideoDesc(desc))), uintptr(toD3DFormat(target)),
		uintptr(unsafe.Pointer(&caps)))
	if err != nil {
		return driver.ProcessorCaps{}, fmt.Errorf("GetVideoProcessorCaps: %w", err)
	}
	return caps, nil
}

func (s *processorService) ProcAmpRange(device driver.GUID, desc *driver.VideoDesc, target driver.Format, prop driver.ProcAmp) (driver.ValueRange, error) {
	var r driver.ValueRange
	err := s.obj.hr(vpsGetProcAmpRange,
		uintptr(unsafe.Pointer(&device)), uintptr(unsafe.Pointer(toVideoDesc(desc))), uintptr(toD3DFormat(target)),
		uintptr(prop), uintptr(unsafe.Pointer(&r)))
	if err != nil {
		return driver.ValueRange{}, fmt.Errorf("GetProcAmpRange: %w", err)
	}
	return r, nil
}

func (s *processorService) CreateProcessor(device driver.GUID, desc *driver.VideoDesc, target driver.Format) (driver.Processor, error) {
	var p *object
	err := s.obj.hr(vpsCreateVideoProcessor,
		uintptr(unsafe.Pointer(&device)), uintptr(unsafe.Pointer(toVideoDesc(desc))), uintptr(toD3DFormat(target)),
		dxva2MaxProcessorSubStreams, uintptr(unsafe.Pointer(&p)))
	if err != nil {
		return nil, fmt.Errorf("CreateVideoProcessor: %w", err)
	}
	return &processor{obj: p}, nil
}

func (s *processorService) Release() {
	s.obj.release()
	s.obj = nil
}

// videoSample is DXVA2_VideoSample.
type videoSample struct {
	Start        int64
	End          int64
	SampleFormat uint32
	SrcSurface   *object
	SrcRect      rect
	DstRect      rect
	Pal          [16]uint32
	PlanarAlpha  driver.Fixed32
	SampleData   uint32
}

// bltParams is DXVA2_VideoProcessBltParams.
type bltParams struct {
	TargetFrame       int64
	TargetRect        rect
	ConstrictionSize  [2]int32
	StreamingFlags    uint32
	BackgroundColor   driver.AYUVSample16
	DestFormat        uint32
	ProcAmp           driver.ProcAmpValues
	Alpha             driver.Fixed32
	NoiseFilterLuma   [3]driver.Fixed32
	NoiseFilterChroma [3]driver.Fixed32
	DetailFilterLuma  [3]driver.Fixed32
	DetailFilterChrom [3]driver.Fixed32
	DestData          uint32
}

type processor struct {
	obj *object
}

func (p *processor) Blt(target driver.Surface, params *driver.BltParams, samples []driver.VideoSample) error {
	if len(samples) == 0 {
		return driver.ErrInvalidCall
	}
	t, err := unwrapSurface(target)
	if err != nil {
		return err
	}
	wire := make([]videoSample, len(samples))
	for i, s := range samples {
		src, err := unwrapSurface(s.Surface)
		if err != nil {
			return err
		}
		wire[i] = videoSample{
			Start:        s.Start,
			End:          s.End,
			SampleFormat: s.Format.Pack(),
			SrcSurface:   src.obj,
			SrcRect:      toRect(s.SrcRect),
			DstRect:      toRect(s.DstRect),
			PlanarAlpha:  s.PlanarAlpha,
		}
	}
	bp := bltParams{
		TargetFrame:      params.TargetFrame,
		TargetRect:       toRect(params.TargetRect),
		ConstrictionSize: [2]int32{int32(params.TargetRect.Dx()), int32(params.TargetRect.Dy())},
		BackgroundColor:  params.BackgroundColor,
		DestFormat:       params.DestFormat.Pack(),
		ProcAmp:          params.ProcAmp,
		Alpha:            params.Alpha,
	}
	return p.obj.hr(vpVideoProcessBlt,
		uintptr(unsafe.Pointer(t.obj)), uintptr(unsafe.Pointer(&bp)),
		uintptr(unsafe.Pointer(&wire[0])), uintptr(len(wire)), 0)
}

func (p *processor) Release() {
	p.obj.release()
	p.obj = nil
}
