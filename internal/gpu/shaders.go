package gpu

// WGSL compute shader sources for the three per-pixel stages that
// dominate CPU time and are the only ones dispatched to the GPU backend:
// Develop, Grain and Output+Encode fused into one pass. Linearize and MTF
// run on the CPU ahead of Develop. Halation and LightLeak have no shader
// here and are not applied on the GPU path: the fused Output+Encode pass
// leaves no linear-light buffer between Output and Encode for them.

const developWGSL = `
struct Params {
  width: u32,
  height: u32,
  wb: vec3<f32>,
  t_eff: f32,
  spectral_matrix: mat3x3<f32>,
  r_curve: vec4<f32>,   // d_min, d_max, gamma, exposure_offset
  g_curve: vec4<f32>,
  b_curve: vec4<f32>,
  shoulder: vec3<f32>,  // per-channel shoulder point
  coupling: mat3x3<f32>,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> src: array<vec3<f32>>;
@group(0) @binding(2) var<storage, read_write> dst: array<vec3<f32>>;

fn sigmoid(u: f32) -> f32 {
  return 1.0 / (1.0 + exp(-u));
}

fn hd_evaluate(curve: vec4<f32>, shoulder_point: f32, log_e: f32) -> f32 {
  let d_min = curve.x;
  let d_max = curve.y;
  let gamma = curve.z;
  let offset = curve.w;
  let range_d = d_max - d_min;
  let k = 4.0 * gamma / range_d;
  let x = log_e - log2(offset) / log2(10.0);
  var d = d_min + range_d * sigmoid(k * x);
  let sp = shoulder_point;
  if (d > sp) {
    let over = d - sp;
    d = d - (over * over) / (sp + over);
  }
  return d;
}

@compute @workgroup_size(16, 16, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
  if (gid.x >= params.width || gid.y >= params.height) {
    return;
  }
  let idx = gid.y * params.width + gid.x;
  let rgb = src[idx];
  var e = params.spectral_matrix * rgb;
  e = max(e, vec3<f32>(0.0)) * params.wb * params.t_eff;

  let eps = 1e-6;
  let log_r = log2(max(e.x, eps)) / log2(10.0);
  let log_g = log2(max(e.y, eps)) / log2(10.0);
  let log_b = log2(max(e.z, eps)) / log2(10.0);

  var density: vec3<f32>;
  density.x = hd_evaluate(params.r_curve, params.shoulder.x, log_r);
  density.y = hd_evaluate(params.g_curve, params.shoulder.y, log_g);
  density.z = hd_evaluate(params.b_curve, params.shoulder.z, log_b);

  let d_mins = vec3<f32>(params.r_curve.x, params.g_curve.x, params.b_curve.x);
  let net = max(density - d_mins, vec3<f32>(0.0));
  let coupled = params.coupling * net;
  dst[idx] = coupled + d_mins;
}
`

const grainWGSL = `
struct Params {
  width: u32,
  height: u32,
  seed_lo: u32,
  seed_hi: u32,
  alpha: f32,
  sigma_read: f32,
  roughness: f32,
  d_ref: f32,
  monochrome: u32,
  color_correlation: f32,
  shadow_noise: f32,
  scale: f32,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> density: array<vec3<f32>>;
@group(0) @binding(2) var<storage, read_write> dst: array<vec3<f32>>;

fn hash32(x: u32) -> u32 {
  var h = x;
  h = h ^ (h >> 16u);
  h = h * 0x45d9f3bu;
  h = h ^ (h >> 16u);
  return h;
}

fn pixel_seed(x: u32, y: u32, channel: u32) -> u32 {
  return hash32(x * 0x9e3779b9u + y * 0x85ebca6bu + channel * 0xc2b2ae35u + params.seed_lo);
}

fn uniform01(h: u32) -> f32 {
  return f32(h) / 4294967295.0;
}

fn box_muller(x: u32, y: u32, channel: u32) -> f32 {
  let u1 = max(uniform01(pixel_seed(x, y, channel)), 1e-6);
  let u2 = uniform01(pixel_seed(x, y, channel + 1000u));
  return sqrt(-2.0 * log(u1)) * cos(6.283185307 * u2);
}

fn grain_sigma(d: f32) -> f32 {
  let variance = (params.alpha * pow(max(d, 0.0), 1.5) + params.sigma_read * params.sigma_read)
    * (1.0 + params.roughness * sin(3.14159265 * clamp(d, 0.0, 1.0)))
    + params.shadow_noise / (d + 0.1);
  return sqrt(max(variance, 0.0));
}

@compute @workgroup_size(16, 16, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
  if (gid.x >= params.width || gid.y >= params.height) {
    return;
  }
  let idx = gid.y * params.width + gid.x;
  let d = density[idx];
  var noise: vec3<f32>;
  if (params.monochrome == 1u) {
    let shared_n = box_muller(gid.x, gid.y, 100u);
    noise = vec3<f32>(shared_n, shared_n, shared_n);
  } else {
    let shared_n = box_muller(gid.x, gid.y, 100u);
    let r_n = box_muller(gid.x, gid.y, 0u);
    let g_n = box_muller(gid.x, gid.y, 1u);
    let b_n = box_muller(gid.x, gid.y, 2u);
    let c = params.color_correlation;
    noise = vec3<f32>(
      c * shared_n + (1.0 - c) * r_n,
      c * shared_n + (1.0 - c) * g_n,
      c * shared_n + (1.0 - c) * b_n,
    );
  }
  let sigma = vec3<f32>(grain_sigma(d.x), grain_sigma(d.y), grain_sigma(d.z)) * params.scale;
  dst[idx] = max(d + noise * sigma, vec3<f32>(0.0));
}
`

const outputEncodeWGSL = `
struct Params {
  width: u32,
  height: u32,
  d_mins: vec3<f32>,
  t_min: f32,
  t_max: f32,
  paper_gamma: f32,
  negative: u32,
  saturation: f32,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> density: array<vec3<f32>>;
@group(0) @binding(2) var<storage, read_write> dst: array<vec3<f32>>;

fn density_to_transmission(d: f32) -> f32 {
  return pow(10.0, -d);
}

fn srgb_encode(c: f32) -> f32 {
  let x = clamp(c, 0.0, 1.0);
  if (x <= 0.0031308) {
    return x * 12.92;
  }
  return 1.055 * pow(x, 1.0 / 2.4) - 0.055;
}

@compute @workgroup_size(16, 16, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
  if (gid.x >= params.width || gid.y >= params.height) {
    return;
  }
  let idx = gid.y * params.width + gid.x;
  let d = density[idx];
  let net = max(d - params.d_mins, vec3<f32>(0.0));
  var t: vec3<f32>;
  t.x = density_to_transmission(net.x);
  t.y = density_to_transmission(net.y);
  t.z = density_to_transmission(net.z);

  var lin: vec3<f32>;
  if (params.negative == 1u) {
    lin = clamp(t, vec3<f32>(0.0), vec3<f32>(1.0));
  } else {
    let denom = max(params.t_max - params.t_min, 1e-6);
    let n = clamp(params.t_max - t, vec3<f32>(0.0), vec3<f32>(denom)) / denom;
    lin = vec3<f32>(pow(n.x, params.paper_gamma), pow(n.y, params.paper_gamma), pow(n.z, params.paper_gamma));
  }

  let lum = 0.2126 * lin.x + 0.7152 * lin.y + 0.0722 * lin.z;
  lin = lum + (lin - lum) * params.saturation;

  dst[idx] = vec3<f32>(srgb_encode(lin.x), srgb_encode(lin.y), srgb_encode(lin.z));
}
`
