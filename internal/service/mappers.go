package service

import (
	"encoding/json"

	"lubripos/internal/dto"
	"lubripos/internal/model"
)

// ── model → dto ───────────────────────────────────────────────────────────────

func sesionToResponse(s *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:                    s.ID.String(),
		SucursalID:            s.SucursalID.String(),
		UsuarioAperturaID:     s.UsuarioAperturaID.String(),
		MontoInicial:          s.MontoInicial,
		ObservacionesApertura: s.ObservacionesApertura,
		UsuarioCierreID:       dto.UUIDPtr(s.UsuarioCierreID),
		MontoFinal:            s.MontoFinal,
		MontoSistema:          s.MontoSistema,
		TotalIngresos:         s.TotalIngresos,
		TotalEgresos:          s.TotalEgresos,
		Diferencia:            s.Diferencia,
		ObservacionesCierre:   s.ObservacionesCierre,
		Estado:                s.Estado,
		FechaApertura:         dto.FormatTime(s.FechaApertura),
		FechaCierre:           dto.FormatTimePtr(s.FechaCierre),
	}
	if s.Sucursal != nil {
		resp.SucursalNombre = s.Sucursal.Nombre
	}
	if s.UsuarioApertura != nil {
		resp.UsuarioAperturaNombre = s.UsuarioApertura.Nombre
	}
	if s.UsuarioCierre != nil {
		nombre := s.UsuarioCierre.Nombre
		resp.UsuarioCierreNombre = &nombre
	}
	if s.DesgloseIngresos != nil {
		var desglose map[string]dto.DesgloseMetodo
		if err := json.Unmarshal([]byte(*s.DesgloseIngresos), &desglose); err == nil {
			resp.DesgloseIngresos = desglose
		}
	}
	return resp
}

func movimientoCajaToResponse(m *model.MovimientoCaja) dto.MovimientoCajaResponse {
	return dto.MovimientoCajaResponse{
		ID:             m.ID.String(),
		SesionCajaID:   m.SesionCajaID.String(),
		Tipo:           m.Tipo,
		Concepto:       m.Concepto,
		Monto:          m.Monto,
		MetodoPago:     m.MetodoPago,
		ReferenciaTipo: m.ReferenciaTipo,
		ReferenciaID:   dto.UUIDPtr(m.ReferenciaID),
		UsuarioID:      m.UsuarioID.String(),
		Estado:         m.Estado,
		Observaciones:  m.Observaciones,
		ReversaDeID:    dto.UUIDPtr(m.ReversaDeID),
		CreatedAt:      dto.FormatTime(m.CreatedAt),
	}
}

func movimientosCajaToResponse(movs []model.MovimientoCaja) []dto.MovimientoCajaResponse {
	out := make([]dto.MovimientoCajaResponse, 0, len(movs))
	for i := range movs {
		out = append(out, movimientoCajaToResponse(&movs[i]))
	}
	return out
}

func importesToResponse(i model.Importes) dto.ImportesResponse {
	resp := dto.ImportesResponse{
		Subtotal:                 i.Subtotal,
		Descuento:                i.Descuento,
		InteresSistemaPorcentaje: i.InteresSistemaPorcentaje,
		InteresSistemaMonto:      i.InteresSistemaMonto,
		InteresTarjetaPorcentaje: i.InteresTarjetaPorcentaje,
		InteresTarjetaMonto:      i.InteresTarjetaMonto,
		Total:                    i.Total,
		TotalConInteresTarjeta:   i.TotalConInteresTarjeta,
		TipoPago:                 i.TipoPago,
		TarjetaID:                dto.UUIDPtr(i.TarjetaID),
		Cuotas:                   i.Cuotas,
	}
	if i.TipoPago == model.PagoMultiple && i.MetodoPago1 != nil && i.MetodoPago2 != nil {
		div := &dto.PagoDivididoResponse{
			MetodoPago1: *i.MetodoPago1,
			MetodoPago2: *i.MetodoPago2,
			TarjetaID2:  dto.UUIDPtr(i.TarjetaID2),
			Cuotas2:     i.Cuotas2,
		}
		if i.MontoPago1 != nil {
			div.MontoPago1 = *i.MontoPago1
		}
		if i.MontoPago2 != nil {
			div.MontoPago2 = *i.MontoPago2
		}
		resp.PagoDividido = div
	}
	return resp
}

func lineaToResponse(id, productoID string, p *model.Producto, unidad string, l lineaImporte) dto.DetalleVentaResponse {
	resp := dto.DetalleVentaResponse{
		ID:             id,
		ProductoID:     productoID,
		UnidadMedida:   unidad,
		Cantidad:       l.cantidad,
		PrecioUnitario: l.precio,
		Subtotal:       l.subtotal,
	}
	if p != nil {
		resp.ProductoNombre = p.Nombre
	}
	return resp
}

func ventaToResponse(v *model.Venta, pagos []model.MovimientoCaja) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:               v.ID.String(),
		Numero:           v.Numero,
		SucursalID:       v.SucursalID.String(),
		ClienteID:        v.ClienteID.String(),
		UsuarioID:        v.UsuarioID.String(),
		SesionCajaID:     v.SesionCajaID.String(),
		ImportesResponse: importesToResponse(v.Importes),
		Estado:           v.Estado,
		Observaciones:    v.Observaciones,
		CanceladoPor:     dto.UUIDPtr(v.CanceladoPor),
		FechaCancelacion: dto.FormatTimePtr(v.FechaCancelacion),
		CreatedAt:        dto.FormatTime(v.CreatedAt),
		Detalles:         make([]dto.DetalleVentaResponse, 0, len(v.Detalles)),
	}
	if v.Cliente != nil {
		resp.ClienteNombre = v.Cliente.Nombre
	}
	for _, d := range v.Detalles {
		resp.Detalles = append(resp.Detalles, lineaToResponse(
			d.ID.String(), d.ProductoID.String(), d.Producto, d.UnidadMedida,
			lineaImporte{cantidad: d.Cantidad, precio: d.PrecioUnitario, subtotal: d.Subtotal}))
	}
	if len(pagos) > 0 {
		resp.Pagos = movimientosCajaToResponse(pagos)
	}
	return resp
}

func servicioToResponse(s *model.Servicio, pagos []model.MovimientoCaja) *dto.ServicioResponse {
	resp := &dto.ServicioResponse{
		ID:               s.ID.String(),
		Numero:           s.Numero,
		SucursalID:       s.SucursalID.String(),
		ClienteID:        s.ClienteID.String(),
		VehiculoID:       dto.UUIDPtr(s.VehiculoID),
		UsuarioID:        s.UsuarioID.String(),
		SesionCajaID:     s.SesionCajaID.String(),
		ImportesResponse: importesToResponse(s.Importes),
		Estado:           s.Estado,
		Observaciones:    s.Observaciones,
		CanceladoPor:     dto.UUIDPtr(s.CanceladoPor),
		FechaCancelacion: dto.FormatTimePtr(s.FechaCancelacion),
		CreatedAt:        dto.FormatTime(s.CreatedAt),
		Items:            make([]dto.ServicioItemResponse, 0, len(s.Items)),
		Empleados:        make([]dto.EmpleadoResponse, 0, len(s.Empleados)),
	}
	if s.Cliente != nil {
		resp.ClienteNombre = s.Cliente.Nombre
	}
	if s.Vehiculo != nil {
		patente := s.Vehiculo.Patente
		resp.Patente = &patente
	}
	for _, it := range s.Items {
		item := dto.ServicioItemResponse{
			ID:             it.ID.String(),
			TipoServicioID: dto.UUIDPtr(it.TipoServicioID),
			Descripcion:    it.Descripcion,
			Observaciones:  it.Observaciones,
			Subtotal:       it.Subtotal,
			Productos:      make([]dto.ItemProductoResponse, 0, len(it.Productos)),
		}
		for _, p := range it.Productos {
			item.Productos = append(item.Productos, lineaToResponse(
				p.ID.String(), p.ProductoID.String(), p.Producto, p.UnidadMedida,
				lineaImporte{cantidad: p.Cantidad, precio: p.PrecioUnitario, subtotal: p.Subtotal}))
		}
		resp.Items = append(resp.Items, item)
	}
	for _, e := range s.Empleados {
		resp.Empleados = append(resp.Empleados, dto.EmpleadoResponse{ID: e.ID.String(), Nombre: e.Nombre})
	}
	if len(pagos) > 0 {
		resp.Pagos = movimientosCajaToResponse(pagos)
	}
	return resp
}

func cuentaToResponse(c *model.CuentaCorriente) *dto.CuentaCorrienteResponse {
	resp := &dto.CuentaCorrienteResponse{
		ID:            c.ID.String(),
		ClienteID:     c.ClienteID.String(),
		Saldo:         c.Saldo,
		LimiteCredito: c.LimiteCredito,
		Activo:        c.Activo,
	}
	if c.Cliente != nil {
		resp.ClienteNombre = c.Cliente.Nombre
	}
	if c.LimiteCredito.IsPositive() {
		disponible := c.LimiteCredito.Sub(c.Saldo)
		resp.CreditoDisponible = &disponible
	}
	return resp
}

func movimientoCuentaToResponse(m *model.MovimientoCuentaCorriente) dto.MovimientoCuentaResponse {
	return dto.MovimientoCuentaResponse{
		ID:                    m.ID.String(),
		CuentaCorrienteID:     m.CuentaCorrienteID.String(),
		Tipo:                  m.Tipo,
		Monto:                 m.Monto,
		SaldoAnterior:         m.SaldoAnterior,
		SaldoNuevo:            m.SaldoNuevo,
		Concepto:              m.Concepto,
		ReferenciaTipo:        m.ReferenciaTipo,
		ReferenciaID:          dto.UUIDPtr(m.ReferenciaID),
		MetodoPago:            m.MetodoPago,
		SesionCajaID:          dto.UUIDPtr(m.SesionCajaID),
		Estado:                m.Estado,
		Observaciones:         m.Observaciones,
		CanceladoPor:          dto.UUIDPtr(m.CanceladoPor),
		FechaCancelacion:      dto.FormatTimePtr(m.FechaCancelacion),
		MotivoCancelacion:     m.MotivoCancelacion,
		MovimientoReversionID: dto.UUIDPtr(m.MovimientoReversionID),
		ReversaDeID:           dto.UUIDPtr(m.ReversaDeID),
		CreatedAt:             dto.FormatTime(m.CreatedAt),
	}
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		SucursalID:   p.SucursalID.String(),
		Codigo:       p.Codigo,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		UnidadMedida: p.UnidadMedida,
		Precio:       p.Precio,
		Stock:        p.Stock,
		StockMinimo:  p.StockMinimo,
		Activo:       p.Activo,
	}
}

func movimientoStockToResponse(m *model.MovimientoStock) dto.MovimientoStockResponse {
	return dto.MovimientoStockResponse{
		ID:             m.ID.String(),
		ProductoID:     m.ProductoID.String(),
		Tipo:           m.Tipo,
		UnidadMedida:   m.UnidadMedida,
		Cantidad:       m.Cantidad,
		StockAnterior:  m.StockAnterior,
		StockNuevo:     m.StockNuevo,
		Motivo:         m.Motivo,
		ReferenciaTipo: m.ReferenciaTipo,
		ReferenciaID:   dto.UUIDPtr(m.ReferenciaID),
		UsuarioID:      m.UsuarioID.String(),
		CreatedAt:      dto.FormatTime(m.CreatedAt),
	}
}
