// Copyright 2013 - 2015 Sebastian Ruml <sebastian.ruml@gmail.com>
// Copyright 2021 - 2022 Mendel Greenberg <mendel@chabad360.me>

//Package osc provides the OpenSoundControl codec and UDP transport used by the bridge.
//
//This implementation is based on the Open Sound Control 1.0 Specification (http://opensoundcontrol.org/spec-1_0.html).
//
//Features
//
//- Supports OSC messages with the following TypeTags:
//
//	'i' (int32)
//	'f' (float32)
//	's' (string)
//	'b' ([]byte)
//	't' (Timetag)
//	'h' (int64)
//	'd' (float64)
//	'T' (true)
//	'F' (false)
//	'N' (nil)
//
//- Supports OSC bundles. Timetags are decoded but not scheduled on.
//
//- Exact-address dispatching with a one level bundle walk.
//
//Packets
//
//The unit of transmission of OSC is an OSC Packet. Any application that sends OSC Packets is an OSC Client;
//any application that receives OSC Packets is an OSC Server.
//
//An OSC packet consists of its contents, a contiguous block of binary data.
//The size of an OSC packet is always 32-bit aligned.
//
//OSC packets come in two flavors:
//
//OSC Messages: An OSC message consists of an OSC address pattern and  zero or more OSC arguments.
//
//OSC Bundles: An OSC Bundle consists of an OSC Timetag, followed by zero or more OSC bundle elements.
//Each bundle element can be another OSC bundle or OSC message.
//
//Usage
//
//OSC client example:
//  client, err := osc.Dial("127.0.0.1:6011")
//  if err != nil {
//      return err
//  }
//  defer client.Close()
//  client.Send(osc.NewMessage("/editor/highlights", int32(1), float32(0.5)))
//
//OSC server example:
//  d := &osc.Dispatcher{}
//  d.Handle("/editor/highlights", osc.MethodFunc(func(msg *osc.Message) {
//      fmt.Println(msg)
//  }))
//
//  conn, _ := net.ListenPacket("udp", "127.0.0.1:6013")
//  server := &osc.Server{}
//  server.Serve(ctx, conn, d.Dispatch)
package osc
