package main

const dojoBanner = `
  ____        _
 |  _ \  ___ (_) ___
 | | | |/ _ \| |/ _ \
 | |_| | (_) | | (_) |
 |____/ \___// |\___/
           |__/
 hierarchical credential relay
`
